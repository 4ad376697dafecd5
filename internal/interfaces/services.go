package interfaces

import (
	"context"

	"github.com/bobmcallan/vire-ticker/internal/models"
)

// SnapshotFetcher acquires a live snapshot and fails when the market-data
// service cannot supply metadata or price history.
type SnapshotFetcher interface {
	Fetch(ctx context.Context, symbol models.Symbol, window models.LookbackWindow, customLogo string) (*models.PriceSnapshot, error)
}

// SnapshotResolver always returns a usable snapshot, substituting the
// fallback table on any acquisition failure.
type SnapshotResolver interface {
	Resolve(ctx context.Context, symbol models.Symbol, window models.LookbackWindow, customLogo string) *models.PriceSnapshot
}

// TickerService builds the full panel for one set of widget inputs.
type TickerService interface {
	Load(ctx context.Context, req TickerRequest) *models.Panel
}

// TickerRequest holds the widget inputs. Zero values select defaults.
type TickerRequest struct {
	Symbol     models.Symbol
	Window     models.LookbackWindow
	CustomLogo string
	Canvas     models.Canvas
}
