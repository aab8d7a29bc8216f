// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the CrowdCheck API server.

CrowdCheck is a crowd-sourced news verification service: readers vote on
whether an article is fake or non-fake, and a classification engine turns
the votes into a score, a confidence, and a status.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... DATABASE_TYPE=postgres go run main.go

Or with flags:

	go run main.go -p 3419 -t sqlite -d crowdcheck.db

# Configuration

Required settings:

  - DATABASE_URL (-d): Connection string (or SQLite file path)
  - ADMIN_KEY (-admin-key): Secret for moderation endpoints
  - IP_HASH_SALT (-ip-salt): Secret for IP hashing

Optional settings:

  - PORT (-p): Server port (default: 3419)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - POLICY_FILE (-policy): YAML file overriding the classification policy

# Architecture

The server uses a handler-based architecture with dependency injection:

  - engine: Vote tallies, scoring, classification, status events
  - ledger: Durable article/vote storage and the audit trail
  - handlers: HTTP request handlers (articles, votes, classification)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Token generation and validation
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
