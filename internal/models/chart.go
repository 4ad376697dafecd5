package models

import (
	"strconv"
	"strings"
)

// Default canvas size of the trend curve, in pixels.
const (
	DefaultCanvasWidth  = 150
	DefaultCanvasHeight = 60
)

// Canvas is the drawing area a curve is fitted to.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultCanvas returns the fixed widget canvas.
func DefaultCanvas() Canvas {
	return Canvas{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight}
}

// OrDefault replaces non-positive dimensions with the defaults.
func (c Canvas) OrDefault() Canvas {
	if c.Width <= 0 {
		c.Width = DefaultCanvasWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultCanvasHeight
	}
	return c
}

// Direction classifies a day-over-day change for styling.
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
	DirectionNone     Direction = "none"
)

// PriceMetrics are derived from a series on every build. nil means absent.
type PriceMetrics struct {
	LatestClose   *float64 `json:"latest_close"`
	PreviousClose *float64 `json:"previous_close"`
	Change        *float64 `json:"change"`
}

// Direction returns positive for a change >= 0, negative below zero and none
// when the change is absent.
func (m PriceMetrics) Direction() Direction {
	if m.Change == nil {
		return DirectionNone
	}
	if *m.Change < 0 {
		return DirectionNegative
	}
	return DirectionPositive
}

// Point is a 2D canvas coordinate; y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CurveSegment is a cubic Bezier from the previous knot to End.
type CurveSegment struct {
	Control1 Point `json:"c1"`
	Control2 Point `json:"c2"`
	End      Point `json:"end"`
}

// ChartGeometry describes a smooth path through Points. It is empty when the
// series had fewer than two points.
type ChartGeometry struct {
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Points   []Point        `json:"points,omitempty"`
	Segments []CurveSegment `json:"segments,omitempty"`
}

// Empty reports whether there is no curve to draw.
func (g ChartGeometry) Empty() bool {
	return len(g.Points) < 2
}

// Path renders the geometry as an SVG path "d" attribute, or "" when empty.
func (g ChartGeometry) Path() string {
	if g.Empty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, g.Points[0])
	for _, s := range g.Segments {
		b.WriteString(" C ")
		writePoint(&b, s.Control1)
		b.WriteByte(' ')
		writePoint(&b, s.Control2)
		b.WriteByte(' ')
		writePoint(&b, s.End)
	}
	return b.String()
}

func writePoint(b *strings.Builder, p Point) {
	b.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
}
