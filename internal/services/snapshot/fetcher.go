package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/vire-ticker/internal/common"
	"github.com/bobmcallan/vire-ticker/internal/interfaces"
	"github.com/bobmcallan/vire-ticker/internal/models"
)

// Fetcher acquires a live snapshot from the market-data service.
type Fetcher struct {
	client interfaces.MarketDataClient
	logger *common.Logger
	now    func() time.Time // injectable clock for testing
}

// NewFetcher creates a fetcher. logger may be nil.
func NewFetcher(client interfaces.MarketDataClient, logger *common.Logger) *Fetcher {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Fetcher{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

type logoResult struct {
	source string
	err    error
}

// Fetch retrieves metadata and the daily close series for symbol over window.
//
// A custom logo is used verbatim and suppresses the remote logo lookup. A
// remote logo is best-effort: its failure leaves the logo empty. Metadata
// failures wrap ErrMetadataUnavailable; a failed or empty price history wraps
// ErrPriceHistoryUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, symbol models.Symbol, window models.LookbackWindow, customLogo string) (*models.PriceSnapshot, error) {
	meta, err := f.client.GetInstrumentMetadata(ctx, symbol.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMetadataUnavailable, symbol, err)
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: %s: empty response", ErrMetadataUnavailable, symbol)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The logo download overlaps the price request; buffered so it never blocks.
	var logoCh chan logoResult
	if customLogo == "" && meta.LogoReference != "" {
		logoCh = make(chan logoResult, 1)
		go func(ref string) {
			src, err := f.fetchLogo(ctx, ref)
			logoCh <- logoResult{source: src, err: err}
		}(meta.LogoReference)
	}

	start, end := window.DateRange(f.now())
	series, err := f.client.GetDailyCloseSeries(ctx, symbol.String(), start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPriceHistoryUnavailable, symbol, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s: no closes between %s and %s", ErrPriceHistoryUnavailable,
			symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	logo := customLogo
	if logoCh != nil {
		select {
		case res := <-logoCh:
			if res.err != nil {
				f.logger.Warn().Err(res.err).Str("symbol", symbol.String()).Msg("Logo unavailable, continuing without it")
			} else {
				logo = res.source
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.logger.Debug().
		Str("symbol", symbol.String()).
		Int("closes", len(series)).
		Bool("logo", logo != "").
		Msg("Snapshot fetched")

	return &models.PriceSnapshot{
		Symbol: symbol,
		Metadata: models.CompanyMetadata{
			Name:       meta.Name,
			LogoSource: logo,
		},
		Series:     series,
		IsFallback: false,
	}, nil
}

func (f *Fetcher) fetchLogo(ctx context.Context, ref string) (string, error) {
	img, err := f.client.FetchLogoImage(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLogoUnavailable, err)
	}
	return InlineLogo(img)
}

// Ensure Fetcher implements SnapshotFetcher
var _ interfaces.SnapshotFetcher = (*Fetcher)(nil)
