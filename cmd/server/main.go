// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

// Package main is the entry point for the Vibescout discovery server.
//
// Startup order: configuration (koanf layers: defaults, YAML file, env
// vars), logging, filter taxonomy (fatal on a malformed table), the
// provider clients and resilient gateway, the mood pipeline, the
// tiered cache, the discovery orchestrator, and finally the supervised
// HTTP server and cache sweeper. SIGINT and SIGTERM trigger a graceful
// shutdown through the supervision tree.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibescout/vibescout/internal/api"
	"github.com/vibescout/vibescout/internal/cachetier"
	"github.com/vibescout/vibescout/internal/config"
	"github.com/vibescout/vibescout/internal/discovery"
	"github.com/vibescout/vibescout/internal/gateway"
	"github.com/vibescout/vibescout/internal/logging"
	"github.com/vibescout/vibescout/internal/mood"
	"github.com/vibescout/vibescout/internal/providers"
	"github.com/vibescout/vibescout/internal/supervisor"
	"github.com/vibescout/vibescout/internal/supervisor/services"
	"github.com/vibescout/vibescout/internal/taxonomy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vibescout: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	log := logging.Component("main")
	log.Info().Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).Msg("starting vibescout")

	// A corrupt taxonomy has no degraded mode.
	reg, err := taxonomy.New()
	if err != nil {
		return fmt.Errorf("build taxonomy: %w", err)
	}

	gw := gateway.New(cfg.Gateway, reg,
		providers.NewPlacesClient(cfg.Providers.Places),
		providers.NewLanguageClient(cfg.Providers.Sentiment),
		providers.NewGeocodeClient(cfg.Providers.Geocoder),
	)
	pipeline := mood.New(gw, reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, err := cachetier.New(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer func() {
		if cerr := cache.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("cache close failed")
		}
	}()

	orch := discovery.New(cfg.Discovery, gw, pipeline, cache, reg, cachetier.Fingerprint)

	ready := func() error {
		hctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return cache.Healthy(hctx)
	}
	handlers := api.NewHandlers(orch, cache, gw, reg, ready)
	router := api.NewRouter(cfg.Server, handlers)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(slog.New(slog.NewJSONHandler(os.Stderr, nil)), treeCfg)

	tree.AddStorageService(cachetier.NewSweeper(cache, cfg.Cache.SweepInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	log.Info().Msg("supervision tree starting")
	if err := tree.Serve(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("supervisor: %w", err)
	}

	if unstopped, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			log.Warn().Str("service", svc.Name).Msg("service missed shutdown timeout")
		}
	}

	log.Info().Msg("shutdown complete")
	return nil
}
