// Package main - Entry point for the shipping cost HTTP server
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shipping-cost/api"
	"shipping-cost/internal/app"
	"shipping-cost/internal/config"
	"shipping-cost/internal/logging"
)

func main() {
	cfgPath := flag.String("config", "", "config file")
	addr := flag.String("addr", "", "server address (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := run(cfg); err != nil {
		logging.Error("server stopped", zap.Error(err))
		logging.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := logging.Named("server")

	src, closeSource, err := app.NewSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	calc, err := app.NewCalculator(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := app.NewCache(cfg, src)
	// a failed warm-up is not fatal: requests retry the load and get 503 meanwhile
	if snap, err := cache.Get(ctx); err != nil {
		log.Warn("initial snapshot load failed", zap.String("source", src.Name()), zap.Error(err))
	} else {
		log.Info("snapshot ready", zap.String("snapshot_id", string(snap.ID)))
	}

	srv := api.New(cache, calc, api.ConfigFrom(cfg.Server), logging.Named("api"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
