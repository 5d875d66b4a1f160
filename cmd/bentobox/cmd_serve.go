package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/bentobox/api"
	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/generic"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the status ticker",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			metrics := api.NewMetrics()
			board, closeStore, err := loadBoard(ctx, logger, bento.WithPersistHook(metrics.PersistFailed))
			if err != nil {
				return fmt.Errorf("serve: loading board: %w", err)
			}
			defer func() { _ = closeStore() }()

			if len(board.Templates()) == 0 && len(board.Encounters()) == 0 {
				if err := board.SetTimeFormat(ctx, generic.TimeFormat(cfg.Calendar.TimeFormat)); err != nil {
					return fmt.Errorf("serve: %w", err)
				}
			}

			ticker, err := api.NewStatusTicker(board, cfg.Status.Tick, metrics, logger)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			h, err := api.NewHandler(board, api.Options{
				Logger:    logger,
				Metrics:   metrics,
				Ticker:    ticker,
				Location:  cfg.Calendar.Location(),
				WeekStart: generic.ParseWeekday(cfg.Calendar.WeekStart),
			})
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			httpSrv := &http.Server{
				Addr:              cfg.Server.ListenAddr,
				Handler:           api.NewRouter(h, cfg.Server.AllowedOrigins),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			ticker.Start()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP API server starting", "addr", cfg.Server.ListenAddr)
				if listenErr := httpSrv.ListenAndServe(); listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
					errCh <- fmt.Errorf("serve: HTTP server: %w", listenErr)
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
			case startErr := <-errCh:
				ticker.Stop(context.Background())
				return startErr
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			ticker.Stop(shutdownCtx)
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("serve: graceful shutdown: %w", err)
			}
			if startErr := <-errCh; startErr != nil {
				return startErr
			}
			logger.Info("server stopped")
			return nil
		},
	}
	return cmd
}
