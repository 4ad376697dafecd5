// Package models defines data structures for the ticker panel
package models

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidSymbol is returned when a symbol is empty after trimming.
var ErrInvalidSymbol = errors.New("symbol must not be empty")

// DefaultLookbackWeeks is used when a caller supplies no window or a non-positive one.
const DefaultLookbackWeeks = 2

// Symbol identifies a tradable instrument. Case is preserved as given.
type Symbol string

// ParseSymbol trims surrounding whitespace and rejects empty input.
func ParseSymbol(raw string) (Symbol, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidSymbol
	}
	return Symbol(s), nil
}

func (s Symbol) String() string {
	return string(s)
}

// LookbackWindow is the number of weeks of daily history requested.
type LookbackWindow int

// Normalize returns the window, or the default when it is not positive.
func (w LookbackWindow) Normalize() LookbackWindow {
	if w <= 0 {
		return DefaultLookbackWeeks
	}
	return w
}

// Days returns the normalized window length in calendar days.
func (w LookbackWindow) Days() int {
	return int(w.Normalize()) * 7
}

// DateRange returns [today - window, today] as calendar dates in now's location.
// Both bounds are midnight; time-of-day is discarded.
func (w LookbackWindow) DateRange(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	end = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	start = end.AddDate(0, 0, -w.Days())
	return start, end
}

// CompanyMetadata holds the display identity of an instrument.
// LogoSource is a URI or an inline data URI; either field may be empty.
type CompanyMetadata struct {
	Name       string `json:"name"`
	LogoSource string `json:"logo,omitempty"`
}

// PricePoint is a single daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is ordered oldest first. An empty series means no data.
type PriceSeries []PricePoint

// Closes returns the closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// SeriesFromCloses builds an undated series, used for constant tables and tests.
func SeriesFromCloses(closes ...float64) PriceSeries {
	out := make(PriceSeries, len(closes))
	for i, c := range closes {
		out[i] = PricePoint{Close: c}
	}
	return out
}

// PriceSnapshot is the unit handed from acquisition to geometry building.
// IsFallback implies Metadata and Series come from the fallback table.
type PriceSnapshot struct {
	Symbol     Symbol          `json:"symbol"`
	Metadata   CompanyMetadata `json:"metadata"`
	Series     PriceSeries     `json:"series"`
	IsFallback bool            `json:"is_fallback"`
}

// InstrumentMetadata is the market-data service's view of an instrument.
type InstrumentMetadata struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	LogoReference string `json:"logo_reference,omitempty"`
}

// LogoImage is raw image bytes as returned by the logo endpoint.
type LogoImage struct {
	Data        []byte
	ContentType string
}
