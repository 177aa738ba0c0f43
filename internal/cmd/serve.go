package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yegors/readback-check/internal/api"
	"github.com/yegors/readback-check/internal/evaluation"
	"github.com/yegors/readback-check/internal/storage/sqlite"
	"github.com/yegors/readback-check/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the 'readback serve' command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().String("host", "", "override server.host")
	cmd.Flags().Int("port", 0, "override server.port")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var store api.SessionStore
	if cfg.Storage.Path != "" {
		db, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		s, err := sqlite.NewExchangeStorage(db, log)
		if err != nil {
			return err
		}
		store = s
	} else {
		log.Warn("storage.path is empty; session history is disabled")
	}

	handler := api.NewHandler(a,
		evaluation.NewEvaluator(a, cfg.Analysis.EvaluationWorkers, log),
		store,
		api.HandlerConfig{
			HistoryWindow:   cfg.Storage.HistoryWindow,
			RequireCallsign: cfg.Analysis.RequireCallsign,
		},
		log,
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, cfg.Server, log).Routes(),
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server",
			logger.String("addr", srv.Addr),
			logger.String("storage", cfg.Storage.Path),
			logger.String("default_mode", cfg.Analysis.DefaultMode),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
