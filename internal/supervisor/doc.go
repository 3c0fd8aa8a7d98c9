// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

/*
Package supervisor provides process supervision for Stockwatch using suture v4.

# Overview

Services are organized into three layers for failure isolation:

	RootSupervisor ("stockwatch")
	├── DataSupervisor ("data-layer")
	│   ├── docstore-gc (badger value-log GC)
	│   └── duckdb-checkpoint
	├── IngestSupervisor ("ingest-layer")
	│   └── sync-manager
	└── APISupervisor ("api-layer")
	    └── http-server

A crashed service is restarted with backoff. Failures in one layer do not
restart the others.

# Logging

Supervisor events (service panics, restarts, backoff) are routed through
sutureslog into a slog.Logger, which main wires to zerolog with
logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(docs)
	tree.AddIngestService(services.NewSyncService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	errCh := tree.ServeBackground(ctx)

See the services subpackage for the adapters.
*/
package supervisor
