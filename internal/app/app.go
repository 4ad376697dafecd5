package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/vire-ticker/internal/clients/polygon"
	"github.com/bobmcallan/vire-ticker/internal/common"
	"github.com/bobmcallan/vire-ticker/internal/interfaces"
	"github.com/bobmcallan/vire-ticker/internal/services/snapshot"
	"github.com/bobmcallan/vire-ticker/internal/services/ticker"
)

// App holds all initialized services and clients.
// It is the shared core used by the serve and show commands.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	MarketClient  interfaces.MarketDataClient
	Resolver      interfaces.SnapshotResolver
	TickerService interfaces.TickerService
	StartupTime   time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the provided path, TICKER_CONFIG, then the binary
// dir, then the development fallback.
func resolveConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("TICKER_CONFIG"); env != "" {
		return env
	}
	candidate := filepath.Join(getBinaryDir(), "ticker.toml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return "config/ticker.toml"
}

// NewApp loads configuration and wires the application.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(getBinaryDir(), config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	return NewAppWithConfig(config, logger), nil
}

// NewAppWithConfig wires the application from an already loaded config.
func NewAppWithConfig(config *common.Config, logger *common.Logger) *App {
	startupStart := time.Now()
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		StartupTime: startupStart,
	}

	// Without a key every request would be rejected upstream, so skip the
	// client and let the resolver serve the fallback snapshot.
	var fetcher interfaces.SnapshotFetcher
	apiKey, err := common.ResolveAPIKey("polygon_api_key", config.Clients.Polygon.APIKey)
	if err != nil {
		logger.Warn().Msg("Polygon API key not configured - serving fallback data only")
	} else {
		client := polygon.NewClient(apiKey,
			polygon.WithBaseURL(config.Clients.Polygon.BaseURL),
			polygon.WithRateLimit(config.Clients.Polygon.RateLimit),
			polygon.WithTimeout(config.Clients.Polygon.GetTimeout()),
			polygon.WithLogger(logger),
		)
		a.MarketClient = client
		fetcher = snapshot.NewFetcher(client, logger)
	}

	a.Resolver = snapshot.NewResolver(fetcher, logger)
	a.TickerService = ticker.NewService(a.Resolver, config.Widget, logger)

	logger.Debug().
		Dur("elapsed", time.Since(startupStart)).
		Bool("live_data", a.MarketClient != nil).
		Msg("Application initialized")

	return a
}
