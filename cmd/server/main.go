// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	_ "time/tzdata" // Europe/Oslo must resolve in scratch containers

	"github.com/klokstudent/stockwatch/internal/api"
	"github.com/klokstudent/stockwatch/internal/config"
	"github.com/klokstudent/stockwatch/internal/database"
	"github.com/klokstudent/stockwatch/internal/docstore"
	"github.com/klokstudent/stockwatch/internal/logging"
	"github.com/klokstudent/stockwatch/internal/schedule"
	"github.com/klokstudent/stockwatch/internal/supervisor"
	"github.com/klokstudent/stockwatch/internal/supervisor/services"
	"github.com/klokstudent/stockwatch/internal/sync"
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
		Str("version", api.Version).
		Str("db_path", cfg.Database.Path).
		Str("docstore_path", cfg.Docstore.Path).
		Bool("docstore_in_memory", cfg.Docstore.InMemory).
		Strs("products", cfg.Poll.Products).
		Msg("Starting stockwatch")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	docs, err := docstore.Open(docstore.Options{
		Path:     cfg.Docstore.Path,
		InMemory: cfg.Docstore.InMemory,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to open store document database")
		return
	}
	defer func() {
		if err := docs.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store document database")
		}
	}()

	catalog := database.NewCachedCatalog(db, cfg.Catalog.CacheSize, cfg.Catalog.CacheTTL)

	hours, err := schedule.New(cfg.Poll.Timezone, schedule.VinmonopoletHours())
	if err != nil {
		logging.Error().Err(err).Str("timezone", cfg.Poll.Timezone).Msg("Failed to load operating hours timezone")
		return
	}

	breaker := sync.NewCircuitBreakerSource(sync.NewVinmonopoletClient(&cfg.Vinmonopolet), &cfg.Vinmonopolet)

	manager := sync.NewManager(&cfg.Poll, sync.Dependencies{
		Source:   breaker,
		Sessions: sync.DocstoreSessions(docs),
		Catalog:  catalog,
		Ledger:   db,
		Gate:     hours,
	})
	manager.OnBatchCompleted(func(result sync.BatchResult) {
		if result.FetchFailures > 0 || result.PersistenceErrors > 0 {
			logging.Warn().
				Str("batch_id", result.BatchID).
				Int("fetch_failures", result.FetchFailures).
				Int("persistence_errors", result.PersistenceErrors).
				Str("breaker", breaker.State()).
				Msg("Batch finished with failures")
		}
	})

	handler := api.NewHandler(api.Dependencies{
		Sync:            manager,
		Database:        db,
		Docstore:        docs,
		Stores:          docs,
		Products:        db,
		Transitions:     db,
		Catalog:         catalog,
		Breaker:         breaker,
		Gate:            hours,
		TrackedProducts: len(cfg.Poll.Products),
		PollingEnabled:  cfg.Poll.Enabled,
	})
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler, cfg.Server.RateLimit).Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return
	}

	// Data layer
	tree.AddDataService(docs)
	tree.AddDataService(services.NewCheckpointService(db, 0))
	tree.AddDataService(catalog)

	// Ingest layer
	if cfg.Poll.Enabled {
		tree.AddIngestService(services.NewSyncService(manager))
		logging.Info().
			Dur("interval", cfg.Poll.Interval).
			Str("timezone", hours.Location().String()).
			Msg("Poll loop added to supervisor tree")
	} else {
		logging.Info().Msg("Polling disabled (POLL_ENABLED=false); manual trigger only")
	}

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, 0))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Stockwatch stopped")
}

// Compile-time checks that the storage layers satisfy the pipeline ports.
var (
	_ sync.TransitionRecorder = (*database.DB)(nil)
	_ sync.CatalogReader      = (*database.CachedCatalog)(nil)
	_ sync.Gate               = (*schedule.OperatingHours)(nil)
	_ sync.OpeningSchedule    = (*schedule.OperatingHours)(nil)
	_ api.TransitionLister    = (*database.DB)(nil)
	_ api.ProductCounter      = (*database.DB)(nil)
	_ api.StoreCounter        = (*docstore.Store)(nil)
	_ api.Pinger              = (*docstore.Store)(nil)
)
