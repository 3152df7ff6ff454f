package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skaladash/internal/config"
	"skaladash/internal/mockapi"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadMockFromEnv()
	root := newRootCmd(&cfg, serve)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd lets --addr and --seed override the environment before run is
// called with the final config.
func newRootCmd(cfg *config.MockConfig, run func(context.Context, config.MockConfig) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "skala-mock",
		Short:        "In-memory SKALA stock backend for the dashboard",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), *cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address (SKALA_MOCK_ADDR)")
	cmd.Flags().BoolVar(&cfg.SeedStock, "seed", cfg.SeedStock, "load the default stocks (SKALA_MOCK_SEED)")
	return cmd
}

func serve(ctx context.Context, cfg config.MockConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	server := mockapi.New(cfg, logger, nil)
	stocks := server.Backend().ListStocks(0, 1).Total

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("skala mock backend listening", "addr", cfg.Addr, "stocks", stocks, "session_cookie", mockapi.SessionCookie)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "err", err)
		return fmt.Errorf("serve %s: %w", cfg.Addr, err)
	}
	return nil
}
