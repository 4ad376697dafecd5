// Package polygon provides a client for the Polygon.io market-data API
package polygon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/vire-ticker/internal/common"
	"github.com/bobmcallan/vire-ticker/internal/interfaces"
	"github.com/bobmcallan/vire-ticker/internal/models"
)

const (
	DefaultBaseURL   = "https://api.polygon.io"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 5 // requests per second

	// maxLogoBytes caps logo downloads; branding assets are small SVG/PNG files.
	maxLogoBytes = 1 << 20
)

// ErrMalformedResponse is returned when a 2xx body lacks the expected payload.
var ErrMalformedResponse = errors.New("malformed response")

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Polygon client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-success response from the API
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("polygon API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// do performs a rate-limited GET against an absolute URL with the API key attached.
// The caller owns the returned body.
func (c *Client) do(ctx context.Context, rawURL string, endpoint string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	q := u.Query()
	q.Set("apiKey", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("endpoint", endpoint).Msg("Polygon API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   endpoint,
		}
	}

	return resp, nil
}

// get performs a request on an API path and decodes the JSON body into result
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	resp, err := c.do(ctx, reqURL, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// tickerDetailsResponse represents the /v3/reference/tickers/{ticker} payload
type tickerDetailsResponse struct {
	Status  string `json:"status"`
	Results *struct {
		Ticker   string `json:"ticker"`
		Name     string `json:"name"`
		Branding *struct {
			LogoURL string `json:"logo_url"`
			IconURL string `json:"icon_url"`
		} `json:"branding"`
	} `json:"results"`
}

// GetInstrumentMetadata retrieves the company name and logo reference
func (c *Client) GetInstrumentMetadata(ctx context.Context, symbol string) (*models.InstrumentMetadata, error) {
	path := "/v3/reference/tickers/" + url.PathEscape(symbol)

	var resp tickerDetailsResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("ticker details for %s: %w", symbol, ErrMalformedResponse)
	}

	meta := &models.InstrumentMetadata{
		Symbol: resp.Results.Ticker,
		Name:   resp.Results.Name,
	}
	if meta.Symbol == "" {
		meta.Symbol = symbol
	}
	if b := resp.Results.Branding; b != nil {
		meta.LogoReference = b.LogoURL
		if meta.LogoReference == "" {
			meta.LogoReference = b.IconURL
		}
	}

	return meta, nil
}

// aggsResponse represents the /v2/aggs payload
type aggsResponse struct {
	Ticker       string    `json:"ticker"`
	Status       string    `json:"status"`
	ResultsCount int       `json:"resultsCount"`
	Results      []aggsBar `json:"results"`
}

type aggsBar struct {
	Timestamp int64   `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

// GetDailyCloseSeries retrieves adjusted daily closes for [start, end], oldest first.
// An empty result is returned without error; callers decide whether that is a failure.
func (c *Client) GetDailyCloseSeries(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error) {
	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/day/%s/%s",
		url.PathEscape(symbol), start.Format("2006-01-02"), end.Format("2006-01-02"))

	params := url.Values{}
	params.Set("adjusted", "true")
	params.Set("sort", "asc")

	var resp aggsResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	series := make(models.PriceSeries, 0, len(resp.Results))
	for _, bar := range resp.Results {
		series = append(series, models.PricePoint{
			Date:  time.UnixMilli(bar.Timestamp).UTC(),
			Close: bar.Close,
		})
	}

	c.logger.Debug().Str("symbol", symbol).Int("bars", len(series)).Msg("Polygon aggregates returned")

	return series, nil
}

// FetchLogoImage downloads a branding image. The reference is an absolute URL
// returned by GetInstrumentMetadata and requires the same API key.
func (c *Client) FetchLogoImage(ctx context.Context, logoReference string) (*models.LogoImage, error) {
	if logoReference == "" {
		return nil, errors.New("empty logo reference")
	}

	resp, err := c.do(ctx, logoReference, "logo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty logo body")
	}
	if len(data) > maxLogoBytes {
		return nil, fmt.Errorf("logo exceeds %d bytes", maxLogoBytes)
	}

	return &models.LogoImage{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
