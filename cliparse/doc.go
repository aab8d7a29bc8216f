// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3419)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - AdminKey: Secret for administrative endpoints (required)
  - IPHashSalt: Secret for salted IP hashing (required)
  - PolicyFile: Optional YAML file with the classification policy

# CLI Flags

	-p          Server port
	-d          Database URL
	-t          Database type
	-policy     Policy YAML file
	-admin-key  Admin key
	-ip-salt    IP hash salt

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	POLICY_FILE   → -policy
	ADMIN_KEY     → -admin-key
	IP_HASH_SALT  → -ip-salt

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - ADMIN_KEY must be provided
  - IP_HASH_SALT must be provided

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(db, cfg, eng)
*/
package cliparse
