// noteful server: folders and notes REST API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kuitang/noteful/internal/api"
	"github.com/kuitang/noteful/internal/config"
	"github.com/kuitang/noteful/internal/db"
	"github.com/kuitang/noteful/internal/folders"
	"github.com/kuitang/noteful/internal/notes"
	"github.com/kuitang/noteful/internal/obs"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "noteful: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	flags, err := config.ParseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := config.LoadEnvFile(flags.EnvFile); err != nil {
		return err
	}
	cfg, err := config.LoadConfig(flags)
	if err != nil {
		return err
	}

	obs.Init(cfg.LogLevel)
	logger := obs.Pkg("main")
	cfg.PrintStartupSummary()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.InitSchema {
		if err := store.ApplySchema(ctx); err != nil {
			return err
		}
		logger.Info("schema applied", "dialect", store.Dialect().String())
	}

	handler := api.NewHandler(folders.NewService(store), notes.NewService(store), store, cfg.APIPrefix)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewRouter(handler, cfg.CORSOrigin),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(obs.Pkg("http").Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "prefix", cfg.APIPrefix)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (*db.Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		return db.OpenPostgres(ctx, cfg.DatabaseURL, cfg.DBMaxConns, obs.Pkg("pgx"))
	default:
		return db.OpenSQLite(cfg.DatabasePath, cfg.DatabaseKey, cfg.DBMaxConns)
	}
}
