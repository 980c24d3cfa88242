// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/seawatch/internal/alerts"
	"github.com/tomtom215/seawatch/internal/animation"
	"github.com/tomtom215/seawatch/internal/api"
	"github.com/tomtom215/seawatch/internal/authz"
	"github.com/tomtom215/seawatch/internal/backend"
	"github.com/tomtom215/seawatch/internal/config"
	"github.com/tomtom215/seawatch/internal/kv"
	"github.com/tomtom215/seawatch/internal/livesync"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/session"
	"github.com/tomtom215/seawatch/internal/supervisor"
	"github.com/tomtom215/seawatch/internal/supervisor/services"
	"github.com/tomtom215/seawatch/internal/triage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("backend_url", cfg.Backend.URL).
		Dur("poll_interval", cfg.Live.Interval).
		Bool("store_in_memory", cfg.Store.InMemory).
		Msg("Starting Seawatch")

	store, err := openStore(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := backend.NewClient(&cfg.Backend)

	scheduler := livesync.NewScheduler(client, livesync.Config{
		Interval:       cfg.Live.Interval,
		ZoneFloor:      cfg.Live.ZoneFloor,
		ExposureCellKm: cfg.Live.ExposureCellKm,
	})
	engine := animation.NewEngine(animation.Config{
		NoiseMeters:        cfg.Live.NoiseMeters,
		TransitionDuration: cfg.Live.TransitionDuration,
		RouteHorizons:      cfg.Live.RouteHorizons,
	})
	selections := animation.NewSelections(engine)
	scheduler.OnUpdate(func(state livesync.RenderState) {
		engine.Apply(state)
		selections.Reconcile(state)
	})

	authorizer, err := authz.New(authz.Config{PolicyPath: cfg.Security.PolicyPath})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorizer")
	}

	sessions := session.NewStore(store)
	fetchers := func(accessToken string) alerts.Fetcher {
		return alerts.BackendFetcher{Client: client, Token: accessToken}
	}
	registry := triage.NewRegistry(ctx, fetchers, authorizer, store, sessions, triage.Options{
		Debounce:    cfg.Alerts.Debounce,
		PageSize:    cfg.Alerts.DefaultPageSize,
		NoticeLimit: cfg.Alerts.NoticeLimit,
	})
	defer registry.Shutdown()

	handler := api.NewHandler(api.Deps{
		Upstream:   client,
		Live:       scheduler,
		Engine:     engine,
		Selections: selections,
		Consoles:   registry,
		Sessions:   sessions,
		Tokens:     session.NewTokenReader(cfg.Security.TokenSecret),
		Authorizer: authorizer,
	})
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Security))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if gc, ok := store.(services.GarbageCollector); ok && !cfg.Store.InMemory {
		tree.AddDataService(services.NewStoreGCService(gc, services.DefaultGCInterval))
	}
	tree.AddSyncService(scheduler)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Seawatch stopped")
}

// openStore opens the annotation and session store.
func openStore(cfg config.StoreConfig) (kv.Store, error) {
	if cfg.InMemory {
		logging.Warn().Msg("In-memory store: sessions and annotations are lost on restart")
		return kv.NewBadgerInMemory()
	}
	if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
		return nil, err
	}
	return kv.NewBadger(cfg.Path)
}
