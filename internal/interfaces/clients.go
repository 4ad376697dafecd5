// Package interfaces defines service contracts for the ticker panel
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/vire-ticker/internal/models"
)

// MarketDataClient provides access to the market-data service.
// All calls carry the same static API credential.
type MarketDataClient interface {
	// GetInstrumentMetadata retrieves the company name and logo reference
	GetInstrumentMetadata(ctx context.Context, symbol string) (*models.InstrumentMetadata, error)

	// GetDailyCloseSeries retrieves daily closes between start and end inclusive, oldest first
	GetDailyCloseSeries(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error)

	// FetchLogoImage downloads the image behind a logo reference
	FetchLogoImage(ctx context.Context, logoReference string) (*models.LogoImage, error)
}
