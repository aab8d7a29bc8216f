package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/mattn/go-isatty"
	_ "modernc.org/sqlite"

	"github.com/crowdcheck/crowdcheck/cliparse"
	"github.com/crowdcheck/crowdcheck/db"
	"github.com/crowdcheck/crowdcheck/engine"
	"github.com/crowdcheck/crowdcheck/ledger"
	"github.com/crowdcheck/crowdcheck/middleware"
	"github.com/crowdcheck/crowdcheck/router"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	setupLogger()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database (sqlite or postgres)
	dbConn, err := sql.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Classification policy: defaults, or a YAML file when configured
	policy := engine.DefaultPolicy()
	if cfg.PolicyFile != "" {
		policy, err = engine.LoadPolicyFile(cfg.PolicyFile)
		if err != nil {
			slog.Error("policy file rejected", "path", cfg.PolicyFile, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("Classification policy", "threshold", policy.Threshold, "min_valid_votes", policy.MinValidVotes)

	// Wire the ledger store and the classification engine
	store := ledger.New(dbConn)
	eng, err := engine.New(policy, store.Counts)
	if err != nil {
		slog.Error("engine initialization failed", "error", err)
		os.Exit(1)
	}
	eng.AddSink(ledger.NewAuditSink(store))
	eng.AddSink(engine.SinkFunc(func(ev engine.StatusChangeEvent) {
		slog.Info("status changed",
			"article_id", ev.ArticleID,
			"old_status", ev.OldStatus,
			"new_status", ev.NewStatus)
	}))

	// Create router
	mux := router.NewRouter(store, eng, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// setupLogger picks text output on an interactive terminal and JSON when
// stderr is redirected (e.g. under a process supervisor).
func setupLogger() {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(handler))
}
