package snapshot

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vire-ticker/internal/common"
	"github.com/bobmcallan/vire-ticker/internal/models"
)

// mockMarketClient records calls and returns canned responses.
type mockMarketClient struct {
	mu sync.Mutex

	meta      *models.InstrumentMetadata
	metaErr   error
	series    models.PriceSeries
	seriesErr error
	logo      *models.LogoImage
	logoErr   error

	metaCalls   int
	seriesCalls int
	logoCalls   int
	lastStart   time.Time
	lastEnd     time.Time
	lastLogoRef string
}

func (m *mockMarketClient) GetInstrumentMetadata(_ context.Context, symbol string) (*models.InstrumentMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metaCalls++
	if m.metaErr != nil {
		return nil, m.metaErr
	}
	if m.meta == nil {
		return nil, nil
	}
	meta := *m.meta
	meta.Symbol = symbol
	return &meta, nil
}

func (m *mockMarketClient) GetDailyCloseSeries(_ context.Context, _ string, start, end time.Time) (models.PriceSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seriesCalls++
	m.lastStart, m.lastEnd = start, end
	return m.series, m.seriesErr
}

func (m *mockMarketClient) FetchLogoImage(_ context.Context, ref string) (*models.LogoImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logoCalls++
	m.lastLogoRef = ref
	return m.logo, m.logoErr
}

func (m *mockMarketClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metaCalls + m.seriesCalls + m.logoCalls
}

func healthyClient() *mockMarketClient {
	return &mockMarketClient{
		meta: &models.InstrumentMetadata{
			Name:          "Apple Inc.",
			LogoReference: "https://api.polygon.io/v1/reference/company-branding/apple/logo.svg",
		},
		series: models.SeriesFromCloses(170, 172, 175, 173, 178),
		logo: &models.LogoImage{
			Data:        []byte(`<svg xmlns="http://www.w3.org/2000/svg"><circle r="1"/></svg>`),
			ContentType: "image/svg+xml",
		},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// --- Fetcher ---

func TestFetch_Success(t *testing.T) {
	client := healthyClient()
	f := NewFetcher(client, nil)

	snap, err := f.Fetch(context.Background(), "AAPL", 2, "")
	require.NoError(t, err)

	assert.Equal(t, models.Symbol("AAPL"), snap.Symbol)
	assert.Equal(t, "Apple Inc.", snap.Metadata.Name)
	assert.True(t, strings.HasPrefix(snap.Metadata.LogoSource, "data:image/svg+xml;charset=utf-8,"))
	assert.Equal(t, []float64{170, 172, 175, 173, 178}, snap.Series.Closes())
	assert.False(t, snap.IsFallback)
	assert.Equal(t, 1, client.logoCalls)
}

func TestFetch_DateRangeUsesWindow(t *testing.T) {
	client := healthyClient()
	f := NewFetcher(client, nil)
	f.now = fixedClock(time.Date(2024, 3, 15, 16, 45, 0, 0, time.Local))

	_, err := f.Fetch(context.Background(), "AAPL", 2, "")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", client.lastStart.Format("2006-01-02"))
	assert.Equal(t, "2024-03-15", client.lastEnd.Format("2006-01-02"))
}

func TestFetch_NonPositiveWindowUsesDefault(t *testing.T) {
	client := healthyClient()
	f := NewFetcher(client, nil)
	f.now = fixedClock(time.Date(2024, 2, 20, 9, 0, 0, 0, time.Local))

	_, err := f.Fetch(context.Background(), "AAPL", 0, "")
	require.NoError(t, err)

	assert.Equal(t, 14*24*time.Hour, client.lastEnd.Sub(client.lastStart))
}

func TestFetch_CustomLogoSkipsRemoteLookup(t *testing.T) {
	client := healthyClient()
	f := NewFetcher(client, nil)

	snap, err := f.Fetch(context.Background(), "AAPL", 2, "https://example.com/x.png")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/x.png", snap.Metadata.LogoSource)
	assert.Equal(t, 0, client.logoCalls)
}

func TestFetch_NoLogoReference(t *testing.T) {
	client := healthyClient()
	client.meta.LogoReference = ""
	f := NewFetcher(client, nil)

	snap, err := f.Fetch(context.Background(), "AAPL", 2, "")
	require.NoError(t, err)

	assert.Empty(t, snap.Metadata.LogoSource)
	assert.Equal(t, 0, client.logoCalls)
}

func TestFetch_LogoFailureAbsorbed(t *testing.T) {
	client := healthyClient()
	client.logo = nil
	client.logoErr = errors.New("connection reset")

	var buf bytes.Buffer
	f := NewFetcher(client, common.NewLoggerWithOutput("warn", &buf))

	snap, err := f.Fetch(context.Background(), "AAPL", 2, "")
	require.NoError(t, err)

	assert.Empty(t, snap.Metadata.LogoSource)
	assert.Equal(t, "Apple Inc.", snap.Metadata.Name)
	assert.Len(t, snap.Series, 5)
	assert.Contains(t, buf.String(), "Logo unavailable")
}

func TestFetch_LogoNotAnImageAbsorbed(t *testing.T) {
	client := healthyClient()
	client.logo = &models.LogoImage{Data: []byte(`{"status":"NOT_AUTHORIZED"}`), ContentType: "application/json"}
	f := NewFetcher(client, nil)

	snap, err := f.Fetch(context.Background(), "AAPL", 2, "")
	require.NoError(t, err)
	assert.Empty(t, snap.Metadata.LogoSource)
}

func TestFetch_MetadataFailure(t *testing.T) {
	client := healthyClient()
	client.metaErr = errors.New("404 not found")
	f := NewFetcher(client, nil)

	_, err := f.Fetch(context.Background(), "ZZZZ", 2, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMetadataUnavailable)
	assert.Equal(t, 0, client.seriesCalls)
}

func TestFetch_NilMetadata(t *testing.T) {
	client := healthyClient()
	client.meta = nil
	f := NewFetcher(client, nil)

	_, err := f.Fetch(context.Background(), "AAPL", 2, "")
	assert.ErrorIs(t, err, ErrMetadataUnavailable)
}

func TestFetch_PriceHistoryFailure(t *testing.T) {
	client := healthyClient()
	client.seriesErr = errors.New("500 internal error")
	f := NewFetcher(client, nil)

	_, err := f.Fetch(context.Background(), "AAPL", 2, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPriceHistoryUnavailable)
}

func TestFetch_EmptySeriesIsFailure(t *testing.T) {
	client := healthyClient()
	client.series = models.PriceSeries{}
	f := NewFetcher(client, nil)

	_, err := f.Fetch(context.Background(), "AAPL", 2, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPriceHistoryUnavailable)
}

// --- Resolver ---

func TestResolve_FallbackSymbolMakesNoCalls(t *testing.T) {
	client := healthyClient()
	r := NewResolver(NewFetcher(client, nil), nil)

	snap := r.Resolve(context.Background(), FallbackSymbol, 2, "")

	assert.True(t, snap.IsFallback)
	assert.Equal(t, FallbackSymbol, snap.Symbol)
	assert.Equal(t, 0, client.calls())
}

func TestResolve_LiveSnapshot(t *testing.T) {
	r := NewResolver(NewFetcher(healthyClient(), nil), nil)

	snap := r.Resolve(context.Background(), "AAPL", 2, "")

	assert.False(t, snap.IsFallback)
	assert.Equal(t, models.Symbol("AAPL"), snap.Symbol)
}

func TestResolve_FailuresReturnFallback(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *mockMarketClient)
		category string
	}{
		{"metadata error", func(c *mockMarketClient) { c.metaErr = errors.New("boom") }, CategoryMetadata},
		{"series error", func(c *mockMarketClient) { c.seriesErr = errors.New("boom") }, CategoryPriceHistory},
		{"empty series", func(c *mockMarketClient) { c.series = nil }, CategoryPriceHistory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := healthyClient()
			tt.mutate(client)

			var buf bytes.Buffer
			r := NewResolver(NewFetcher(client, nil), common.NewLoggerWithOutput("warn", &buf))

			snap := r.Resolve(context.Background(), "AAPL", 2, "https://example.com/custom.png")

			require.NotNil(t, snap)
			assert.True(t, snap.IsFallback)
			assert.Equal(t, FallbackSymbol, snap.Symbol)
			assert.Equal(t, FallbackCompanyName, snap.Metadata.Name)
			assert.Equal(t, FallbackLogo, snap.Metadata.LogoSource)
			assert.Equal(t, fallbackCloses[:], snap.Series.Closes())
			assert.Contains(t, buf.String(), tt.category)
		})
	}
}

func TestResolve_NilFetcher(t *testing.T) {
	r := NewResolver(nil, nil)
	snap := r.Resolve(context.Background(), "AAPL", 2, "")
	assert.True(t, snap.IsFallback)
}

func TestFallback_ReturnsCopies(t *testing.T) {
	a := Fallback()
	a.Series[0].Close = -1
	a.Metadata.Name = "changed"

	b := Fallback()
	assert.Equal(t, 141.0, b.Series[0].Close)
	assert.Equal(t, FallbackCompanyName, b.Metadata.Name)
	assert.Equal(t, 185.06, b.LatestClose)
	assert.Equal(t, 182.0, b.PreviousClose)
}

func TestFallback_PrecomputedMatchesSeries(t *testing.T) {
	fb := Fallback()
	closes := fb.Series.Closes()
	require.GreaterOrEqual(t, len(closes), 2)
	assert.Equal(t, fb.LatestClose, closes[len(closes)-1])
	assert.Equal(t, fb.PreviousClose, closes[len(closes)-2])
}

// --- Category ---

func TestCategory(t *testing.T) {
	assert.Equal(t, CategoryMetadata, Category(ErrMetadataUnavailable))
	assert.Equal(t, CategoryPriceHistory, Category(ErrPriceHistoryUnavailable))
	assert.Equal(t, CategoryCancelled, Category(context.Canceled))
	assert.Equal(t, CategoryTransport, Category(errors.New("dial tcp: refused")))
}

// --- InlineLogo ---

func TestInlineLogo_SVG(t *testing.T) {
	src, err := InlineLogo(&models.LogoImage{
		Data:        []byte(`<svg a="b c"/>`),
		ContentType: "image/svg+xml; charset=utf-8",
	})
	require.NoError(t, err)
	assert.Equal(t, "data:image/svg+xml;charset=utf-8,%3Csvg%20a%3D%22b%20c%22%2F%3E", src)
}

func TestInlineLogo_SVGDetectedFromBody(t *testing.T) {
	src, err := InlineLogo(&models.LogoImage{
		Data:        []byte(`<?xml version="1.0"?><svg/>`),
		ContentType: "text/xml",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(src, "data:image/svg+xml;charset=utf-8,"))
}

func TestInlineLogo_PNG(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	src, err := InlineLogo(&models.LogoImage{Data: png})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(src, "data:image/png;base64,"))
}

func TestInlineLogo_Rejects(t *testing.T) {
	_, err := InlineLogo(nil)
	assert.ErrorIs(t, err, ErrLogoUnavailable)

	_, err = InlineLogo(&models.LogoImage{})
	assert.ErrorIs(t, err, ErrLogoUnavailable)

	_, err = InlineLogo(&models.LogoImage{Data: []byte("<html></html>"), ContentType: "text/html"})
	assert.ErrorIs(t, err, ErrLogoUnavailable)
}
