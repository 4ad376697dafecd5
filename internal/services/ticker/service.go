// Package ticker assembles ticker panels from resolved snapshots
package ticker

import (
	"context"

	"github.com/bobmcallan/vire-ticker/internal/common"
	"github.com/bobmcallan/vire-ticker/internal/interfaces"
	"github.com/bobmcallan/vire-ticker/internal/models"
	"github.com/bobmcallan/vire-ticker/internal/services/chart"
)

// Service implements TickerService
type Service struct {
	resolver interfaces.SnapshotResolver
	defaults common.WidgetConfig
	logger   *common.Logger
}

// NewService creates a new ticker service. Zero-valued widget defaults fall
// back to the built-in window and canvas.
func NewService(resolver interfaces.SnapshotResolver, defaults common.WidgetConfig, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		resolver: resolver,
		defaults: defaults,
		logger:   logger,
	}
}

// Load runs the pipeline once: resolve a snapshot, then derive metrics and
// geometry from it. It always returns a panel.
func (s *Service) Load(ctx context.Context, req interfaces.TickerRequest) *models.Panel {
	req = s.normalize(req)

	snap := s.resolver.Resolve(ctx, req.Symbol, req.Window, req.CustomLogo)

	panel := &models.Panel{
		Snapshot: *snap,
		Metrics:  chart.BuildMetrics(snap.Series),
		Geometry: chart.BuildGeometry(snap.Series, req.Canvas),
	}

	s.logger.Debug().
		Str("symbol", req.Symbol.String()).
		Bool("fallback", snap.IsFallback).
		Str("direction", string(panel.Metrics.Direction())).
		Msg("Panel loaded")

	return panel
}

func (s *Service) normalize(req interfaces.TickerRequest) interfaces.TickerRequest {
	if req.Window <= 0 {
		req.Window = models.LookbackWindow(s.defaults.DefaultWeeks)
	}
	req.Window = req.Window.Normalize()

	if req.Canvas.Width <= 0 {
		req.Canvas.Width = s.defaults.CanvasWidth
	}
	if req.Canvas.Height <= 0 {
		req.Canvas.Height = s.defaults.CanvasHeight
	}
	req.Canvas = req.Canvas.OrDefault()

	return req
}

// Ensure Service implements TickerService
var _ interfaces.TickerService = (*Service)(nil)
