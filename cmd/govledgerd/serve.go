package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/petrodao/govledger/app"
	"github.com/petrodao/govledger/server"
	"github.com/petrodao/govledger/store/badger"
)

const shutdownTimeout = 30 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun()
		},
	}
}

func serveRun() error {
	cfg, err := server.LoadConfig(configFile)
	if err != nil {
		return err
	}
	logger := commonRun(cfg)

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("cannot close store", "err", err)
		}
	}()

	clock := app.WallClock{}
	if cfg.TickGranularity != "" {
		gran, err := time.ParseDuration(cfg.TickGranularity)
		if err != nil {
			return err
		}
		clock.Granularity = gran
	}

	registry := prometheus.NewRegistry()

	ledger, err := app.NewLedger(app.Options{
		Store:       store,
		Clock:       clock,
		Logger:      logger,
		Registry:    registry,
		RevenueConf: cfg.RevenueConfiguration(),
		VoteConf:    cfg.VoteConfiguration(),
	})
	if err != nil {
		return err
	}

	srv := server.New(ledger, logger, registry)
	httpSrv := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: srv.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "address", cfg.ListenAddress)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func openStore(cfg *server.Config, logger *slog.Logger) (*badger.Store, error) {
	dataDir := cfg.DataDir
	if cfg.InMemory {
		dataDir = ""
	} else if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, err
	}
	return badger.Open(dataDir, badger.WithLogger(logger))
}
