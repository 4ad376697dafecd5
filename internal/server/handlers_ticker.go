package server

import (
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/bobmcallan/vire-ticker/internal/interfaces"
	"github.com/bobmcallan/vire-ticker/internal/models"
	"github.com/bobmcallan/vire-ticker/internal/services/chart"
)

const (
	tickerPrefix    = "/api/ticker/"
	maxSymbolLength = 32
	maxWeeks        = 52
	maxCanvasSide   = 2000
)

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9.\-_:]+$`)

// routeTicker dispatches /api/ticker/{symbol}[/chart.png|/panel.svg].
func (s *Server) routeTicker(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, tickerPrefix)
	raw, sub, _ := strings.Cut(rest, "/")

	symbol, errMsg := validateSymbol(raw)
	if errMsg != "" {
		WriteErrorWithCode(w, http.StatusBadRequest, errMsg, "invalid_symbol")
		return
	}

	switch sub {
	case "":
		s.handleTicker(w, r, symbol)
	case "chart.png":
		s.handleTickerChart(w, r, symbol)
	case "panel.svg":
		s.handleTickerPanel(w, r, symbol)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// handleTicker handles GET /api/ticker/{symbol}. Upstream failures are never
// surfaced here: the body then describes the fallback panel.
func (s *Server) handleTicker(w http.ResponseWriter, r *http.Request, symbol models.Symbol) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	req, errMsg := parseTickerRequest(r, symbol)
	if errMsg != "" {
		WriteErrorWithCode(w, http.StatusBadRequest, errMsg, "invalid_parameter")
		return
	}

	panel := s.app.TickerService.Load(r.Context(), req)
	WriteJSON(w, http.StatusOK, models.NewTickerResponse(panel))
}

func (s *Server) handleTickerChart(w http.ResponseWriter, r *http.Request, symbol models.Symbol) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	req, errMsg := parseTickerRequest(r, symbol)
	if errMsg != "" {
		WriteErrorWithCode(w, http.StatusBadRequest, errMsg, "invalid_parameter")
		return
	}

	panel := s.app.TickerService.Load(r.Context(), req)
	canvas := models.Canvas{Width: panel.Geometry.Width, Height: panel.Geometry.Height}

	png, err := chart.RenderSparkline(panel.Snapshot.Series, canvas)
	if err != nil {
		WriteErrorWithCode(w, http.StatusUnprocessableEntity, fmt.Sprintf("Cannot render chart: %v", err), "insufficient_data")
		return
	}
	WriteBody(w, "image/png", png)
}

func (s *Server) handleTickerPanel(w http.ResponseWriter, r *http.Request, symbol models.Symbol) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	req, errMsg := parseTickerRequest(r, symbol)
	if errMsg != "" {
		WriteErrorWithCode(w, http.StatusBadRequest, errMsg, "invalid_parameter")
		return
	}

	panel := s.app.TickerService.Load(r.Context(), req)
	WriteBody(w, "image/svg+xml", []byte(chart.RenderPanelSVG(panel)))
}

// validateSymbol trims and validates a symbol path parameter.
// Returns the symbol and an empty string on success, or an error message.
func validateSymbol(raw string) (models.Symbol, string) {
	symbol, err := models.ParseSymbol(raw)
	if err != nil {
		return "", "Symbol is required"
	}
	if len(symbol) > maxSymbolLength {
		return "", fmt.Sprintf("Symbol exceeds %d characters", maxSymbolLength)
	}
	if !symbolPattern.MatchString(symbol.String()) {
		return "", fmt.Sprintf("Invalid symbol %q: only letters, digits and . - _ : are allowed", raw)
	}
	return symbol, ""
}

// parseTickerRequest reads weeks, logo, width and height from the query.
// Missing values stay zero so the service applies its defaults.
func parseTickerRequest(r *http.Request, symbol models.Symbol) (interfaces.TickerRequest, string) {
	q := r.URL.Query()
	req := interfaces.TickerRequest{
		Symbol:     symbol,
		CustomLogo: strings.TrimSpace(q.Get("logo")),
	}

	if v := q.Get("weeks"); v != "" {
		weeks, err := strconv.Atoi(v)
		if err != nil || weeks < 1 || weeks > maxWeeks {
			return req, fmt.Sprintf("weeks must be an integer between 1 and %d", maxWeeks)
		}
		req.Window = models.LookbackWindow(weeks)
	}

	for _, dim := range []struct {
		name string
		dst  *float64
	}{
		{"width", &req.Canvas.Width},
		{"height", &req.Canvas.Height},
	} {
		v := q.Get(dim.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || f <= 0 || f > maxCanvasSide {
			return req, fmt.Sprintf("%s must be a number between 0 and %d", dim.name, maxCanvasSide)
		}
		*dim.dst = f
	}

	return req, ""
}
