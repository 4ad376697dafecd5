package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/vire-ticker/internal/app"
	"github.com/bobmcallan/vire-ticker/internal/common"
	"github.com/bobmcallan/vire-ticker/internal/interfaces"
	"github.com/bobmcallan/vire-ticker/internal/models"
	"github.com/bobmcallan/vire-ticker/internal/server"
	"github.com/bobmcallan/vire-ticker/internal/services/chart"
	"github.com/bobmcallan/vire-ticker/internal/services/ticker"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ticker",
		Short: "Share price panel service",
		Long: `ticker renders a compact share price panel: company logo and name,
latest close, day-over-day change and a small trend curve.

When market data cannot be fetched a fixed fallback panel is shown instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "path to ticker.toml (default: $TICKER_CONFIG, then next to the binary)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func loadApp(cmd *cobra.Command) (*app.App, error) {
	configPath, _ := cmd.Flags().GetString("config")
	return app.NewApp(configPath)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			return runServer(a)
		},
	}
}

func runServer(a *app.App) error {
	common.PrintBanner(a.Config, a.Logger)

	srv := server.NewServer(a)
	shutdownChan := make(chan struct{}, 1)
	srv.SetShutdownChannel(shutdownChan)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		a.Logger.Info().Msg("Shutdown signal received")
	case <-shutdownChan:
	case err := <-errChan:
		a.Logger.Error().Err(err).Msg("HTTP server failed")
		return err
	}

	common.PrintShutdownBanner(a.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
		return err
	}

	a.Logger.Info().Msg("Server stopped")
	return nil
}

func newShowCmd() *cobra.Command {
	var (
		weeks   int
		logo    string
		asSVG   bool
		asJSON  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "show SYMBOL",
		Short: "Print the panel for a symbol",
		Example: `  ticker show AAPL
  ticker show MSFT --weeks 4 --json
  ticker show VNI --svg > panel.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := models.ParseSymbol(args[0])
			if err != nil {
				return err
			}

			a, err := loadApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			panel := loadPanel(ctx, a, interfaces.TickerRequest{
				Symbol:     symbol,
				Window:     models.LookbackWindow(weeks),
				CustomLogo: logo,
			})

			out := cmd.OutOrStdout()
			switch {
			case asSVG:
				_, err = fmt.Fprintln(out, chart.RenderPanelSVG(panel))
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				err = enc.Encode(models.NewTickerResponse(panel))
			default:
				err = writePanel(out, panel)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&weeks, "weeks", 0, "lookback window in weeks (default from config)")
	cmd.Flags().StringVar(&logo, "logo", "", "logo URI to use instead of the company logo")
	cmd.Flags().BoolVar(&asSVG, "svg", false, "print the panel as SVG")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the panel as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "give up on market data after this long")
	cmd.MarkFlagsMutuallyExclusive("svg", "json")

	return cmd
}

// loadPanel runs a single load through a Loader and waits for it.
func loadPanel(ctx context.Context, a *app.App, req interfaces.TickerRequest) *models.Panel {
	loader := ticker.NewLoader(a.TickerService, a.Logger)
	defer loader.Close()

	_, done := loader.Submit(ctx, req)
	<-done
	return loader.Current()
}

// writePanel prints a plain-text rendition of the panel.
func writePanel(w io.Writer, p *models.Panel) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s", p.Snapshot.Symbol)
	if p.Snapshot.Metadata.Name != "" {
		fmt.Fprintf(&b, "  %s", p.Snapshot.Metadata.Name)
	}
	if p.Snapshot.IsFallback {
		b.WriteString("  (fallback data)")
	}
	b.WriteString("\n")

	if price := chart.FormatPrice(p.Metrics.LatestClose); price != "" {
		b.WriteString(price)
		if change := chart.FormatChange(p.Metrics.Change); change != "" {
			fmt.Fprintf(&b, "  %s", change)
		}
		b.WriteString("\n")
	}

	if line := sparkline(p.Snapshot.Series.Closes()); line != "" {
		b.WriteString(line + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline maps closes onto block characters. Fewer than two closes draw nothing.
func sparkline(closes []float64) string {
	if len(closes) < 2 {
		return ""
	}
	lo, hi := closes[0], closes[0]
	for _, c := range closes[1:] {
		lo = min(lo, c)
		hi = max(hi, c)
	}

	out := make([]rune, len(closes))
	for i, c := range closes {
		idx := len(sparkBlocks) / 2
		if hi > lo {
			idx = int((c - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), common.GetFullVersion())
		},
	}
}
