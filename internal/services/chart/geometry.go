// Package chart derives price metrics and trend-curve geometry from a close series
package chart

import (
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/vire-ticker/internal/models"
)

// BuildMetrics derives latest close, previous close and day-over-day change.
// Fewer than two closes leave PreviousClose and Change absent.
func BuildMetrics(series models.PriceSeries) models.PriceMetrics {
	var m models.PriceMetrics
	n := len(series)
	if n == 0 {
		return m
	}

	latest := series[n-1].Close
	m.LatestClose = &latest

	if n < 2 {
		return m
	}

	previous := series[n-2].Close
	m.PreviousClose = &previous

	// decimal keeps 185.06 - 160.02 at 25.04 instead of 25.040000000000006
	change := decimal.NewFromFloat(latest).Sub(decimal.NewFromFloat(previous)).InexactFloat64()
	m.Change = &change

	return m
}

// BuildGeometry fits the series into canvas as a chain of cubic segments.
//
// Point i sits at x = i*width/(n-1) and y = height - (p-min)/(max-min)*height,
// so higher prices are drawn higher. A flat series is drawn at mid-height.
// Each segment's control points share the horizontal midpoint of its knots and
// take the y of their own knot, giving a curve through every point that is
// level at each knot.
func BuildGeometry(series models.PriceSeries, canvas models.Canvas) models.ChartGeometry {
	g := models.ChartGeometry{Width: canvas.Width, Height: canvas.Height}

	n := len(series)
	if n < 2 {
		return g
	}

	minPrice, maxPrice := series[0].Close, series[0].Close
	for _, p := range series[1:] {
		if p.Close < minPrice {
			minPrice = p.Close
		}
		if p.Close > maxPrice {
			maxPrice = p.Close
		}
	}
	priceRange := maxPrice - minPrice
	stepX := canvas.Width / float64(n-1)

	g.Points = make([]models.Point, n)
	for i, p := range series {
		y := canvas.Height / 2
		if priceRange > 0 {
			y = canvas.Height - ((p.Close-minPrice)/priceRange)*canvas.Height
		}
		g.Points[i] = models.Point{X: float64(i) * stepX, Y: y}
	}
	// last knot sits exactly on the right edge
	g.Points[n-1].X = canvas.Width

	g.Segments = make([]models.CurveSegment, n-1)
	for i := 0; i < n-1; i++ {
		p0, p1 := g.Points[i], g.Points[i+1]
		cpX := (p0.X + p1.X) / 2
		g.Segments[i] = models.CurveSegment{
			Control1: models.Point{X: cpX, Y: p0.Y},
			Control2: models.Point{X: cpX, Y: p1.Y},
			End:      p1,
		}
	}

	return g
}
