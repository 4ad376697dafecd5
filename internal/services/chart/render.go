package chart

import (
	"bytes"
	"fmt"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/vire-ticker/internal/models"
)

// RenderSparkline renders the close series as a bare PNG trend line sized to
// canvas. The stroke follows the day-over-day direction. Returns raw PNG bytes.
func RenderSparkline(series models.PriceSeries, canvas models.Canvas) ([]byte, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(series))
	}
	canvas = canvas.OrDefault()

	xValues := make([]float64, len(series))
	yValues := series.Closes()
	for i := range series {
		xValues[i] = float64(i)
	}

	color := DirectionColor(BuildMetrics(series).Direction())

	line := gochart.ContinuousSeries{
		Name: "Close",
		Style: gochart.Style{
			StrokeColor: drawing.ColorFromHex(strings.TrimPrefix(color, "#")),
			StrokeWidth: 2,
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := gochart.Chart{
		Width:  int(canvas.Width),
		Height: int(canvas.Height),
		Background: gochart.Style{
			Padding: gochart.Box{Top: 2, Left: 2, Right: 2, Bottom: 2},
		},
		XAxis:  gochart.XAxis{Style: gochart.Hidden()},
		YAxis:  gochart.YAxis{Style: gochart.Hidden()},
		Series: []gochart.Series{line},
	}

	// go-chart rejects a zero-height value range
	if lo, hi := minMax(yValues); lo == hi {
		graph.YAxis.Range = &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
