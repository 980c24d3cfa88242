// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

/*
Package main is the entry point for the Seawatch server.

Seawatch keeps a live vessel and hazard-zone map in sync with an upstream
maritime REST backend and serves a role-gated alert triage console.

# Application Architecture

	RootSupervisor ("seawatch")
	├── DataSupervisor ("data-layer")
	│   └── Store GC (badger value log)
	├── SyncSupervisor ("sync-layer")
	│   └── Live sync scheduler (vessels + risk zones)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: koanf v2 with defaults, YAML file, environment
 2. Logging: zerolog with JSON/console output modes
 3. Store: badger (or in-memory) for sessions and annotations
 4. Backend client: circuit breakers and an outbound rate limiter
 5. Live sync scheduler and animation engine
 6. Authorizer: Casbin role matrix
 7. Triage registry: one console per operator session
 8. Supervisor tree and HTTP server

# Configuration

	BACKEND_URL=https://api.example.com/api
	LIVE_POLL_INTERVAL=10s
	ALERTS_DEBOUNCE=500ms
	STORE_PATH=/data/seawatch     # or STORE_IN_MEMORY=true
	TOKEN_SECRET=<hmac secret>    # verifies role claims when set
	AUTHZ_POLICY_PATH=<csv>       # replaces the built-in role matrix
	HTTP_PORT=3857
	LOG_LEVEL=info
	LOG_FORMAT=json

A YAML file is read from CONFIG_PATH or the default search paths.
*/
package main
