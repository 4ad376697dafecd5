package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vire-ticker/internal/common"
	"github.com/bobmcallan/vire-ticker/internal/interfaces"
	"github.com/bobmcallan/vire-ticker/internal/services/snapshot"
)

func TestNewAppWithConfig_NoAPIKeyServesFallback(t *testing.T) {
	t.Setenv("POLYGON_API_KEY", "")
	t.Setenv("TICKER_POLYGON_API_KEY", "")

	a := NewAppWithConfig(common.NewDefaultConfig(), nil)

	assert.Nil(t, a.MarketClient)
	panel := a.TickerService.Load(context.Background(), interfaces.TickerRequest{Symbol: "AAPL"})
	assert.True(t, panel.Snapshot.IsFallback)
	assert.Equal(t, snapshot.FallbackSymbol, panel.Snapshot.Symbol)
}

func TestNewAppWithConfig_UsesConfiguredUpstream(t *testing.T) {
	var calls int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"ERROR"}`))
	}))
	defer upstream.Close()

	t.Setenv("POLYGON_API_KEY", "test-key")
	cfg := common.NewDefaultConfig()
	cfg.Clients.Polygon.BaseURL = upstream.URL

	a := NewAppWithConfig(cfg, nil)
	require.NotNil(t, a.MarketClient)

	panel := a.TickerService.Load(context.Background(), interfaces.TickerRequest{Symbol: "AAPL"})
	assert.True(t, panel.Snapshot.IsFallback)
	assert.Equal(t, 1, calls)
}

func TestNewApp_LoadsConfigFile(t *testing.T) {
	t.Setenv("POLYGON_API_KEY", "")
	t.Setenv("TICKER_POLYGON_API_KEY", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "ticker.toml")
	content := `
[widget]
default_weeks = 6

[logging]
level = "error"
outputs = []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	a, err := NewApp(path)
	require.NoError(t, err)
	assert.Equal(t, 6, a.Config.Widget.DefaultWeeks)
	assert.Equal(t, "error", a.Config.Logging.Level)
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "explicit.toml", resolveConfigPath("explicit.toml"))

	t.Setenv("TICKER_CONFIG", "/etc/ticker/ticker.toml")
	assert.Equal(t, "/etc/ticker/ticker.toml", resolveConfigPath(""))
}
