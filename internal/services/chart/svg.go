package chart

import (
	"fmt"
	"html"
	"strings"

	"github.com/bobmcallan/vire-ticker/internal/models"
)

// Panel layout, in SVG user units.
const (
	panelWidth  = 420
	panelHeight = 80
	logoSize    = 60
	curveX      = 190
	curveY      = 10
)

// RenderPanelSVG draws a complete ticker panel: logo disc, symbol and name,
// trend curve, latest close and change. Missing pieces are left out rather
// than drawn as placeholders.
func RenderPanelSVG(p *models.Panel) string {
	snap := p.Snapshot
	color := DirectionColor(p.Metrics.Direction())

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		panelWidth, panelHeight, panelWidth, panelHeight)

	// logo disc
	r := logoSize / 2
	fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="%d" fill="#efefef"/>`, 10+r, panelHeight/2, r)
	if snap.Metadata.LogoSource != "" {
		inner := logoSize * 7 / 10
		fmt.Fprintf(&b, `<image href="%s" x="%d" y="%d" width="%d" height="%d" preserveAspectRatio="xMidYMid meet"/>`,
			html.EscapeString(snap.Metadata.LogoSource), 10+r-inner/2, panelHeight/2-inner/2, inner, inner)
	}

	// symbol and name
	fmt.Fprintf(&b, `<text x="%d" y="34" font-size="20" font-weight="600">%s</text>`,
		20+logoSize, html.EscapeString(snap.Symbol.String()))
	if snap.Metadata.Name != "" {
		fmt.Fprintf(&b, `<text x="%d" y="56" font-size="13">%s</text>`,
			20+logoSize, html.EscapeString(snap.Metadata.Name))
	}
	if p.Loading {
		fmt.Fprintf(&b, `<text x="%d" y="72" font-size="11" fill="%s">Loading data...</text>`, 20+logoSize, ColorNeutral)
	}

	// trend curve
	if path := p.Geometry.Path(); path != "" {
		fmt.Fprintf(&b, `<g transform="translate(%d,%d)"><path d="%s" stroke="%s" stroke-width="2" fill="none"/></g>`,
			curveX, curveY, path, color)
	}

	// price and change
	if price := FormatPrice(p.Metrics.LatestClose); price != "" {
		fmt.Fprintf(&b, `<text x="%d" y="36" font-size="19" font-weight="700" text-anchor="end">%s</text>`,
			panelWidth-10, price)
	}
	if change := FormatChange(p.Metrics.Change); change != "" {
		fmt.Fprintf(&b, `<text x="%d" y="58" font-size="14" text-anchor="end" fill="%s">%s</text>`,
			panelWidth-10, color, change)
	}

	b.WriteString(`</svg>`)
	return b.String()
}
