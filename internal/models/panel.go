package models

// Panel is everything the presentation layer needs to draw one ticker.
type Panel struct {
	Snapshot PriceSnapshot `json:"snapshot"`
	Metrics  PriceMetrics  `json:"metrics"`
	Geometry ChartGeometry `json:"geometry"`
	Loading  bool          `json:"loading"`
	Sequence uint64        `json:"sequence"`
}

// TickerResponse is the flattened JSON form of a Panel served over HTTP.
type TickerResponse struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Logo          string    `json:"logo,omitempty"`
	Closes        []float64 `json:"closes"`
	IsFallback    bool      `json:"is_fallback"`
	LatestClose   *float64  `json:"latest_close"`
	PreviousClose *float64  `json:"previous_close"`
	Change        *float64  `json:"change"`
	Direction     Direction `json:"direction"`
	Path          string    `json:"path"`
	Points        []Point   `json:"points,omitempty"`
	Width         float64   `json:"width"`
	Height        float64   `json:"height"`
}

// NewTickerResponse flattens a panel for the wire.
func NewTickerResponse(p *Panel) TickerResponse {
	return TickerResponse{
		Symbol:        p.Snapshot.Symbol.String(),
		Name:          p.Snapshot.Metadata.Name,
		Logo:          p.Snapshot.Metadata.LogoSource,
		Closes:        p.Snapshot.Series.Closes(),
		IsFallback:    p.Snapshot.IsFallback,
		LatestClose:   p.Metrics.LatestClose,
		PreviousClose: p.Metrics.PreviousClose,
		Change:        p.Metrics.Change,
		Direction:     p.Metrics.Direction(),
		Path:          p.Geometry.Path(),
		Points:        p.Geometry.Points,
		Width:         p.Geometry.Width,
		Height:        p.Geometry.Height,
	}
}
