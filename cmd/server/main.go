/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the HR engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and optional YAML config
  2. Initialize SQLite store
  3. Wire domain services (reconciler, leave service, reports)
  4. Configure HTTP router and background sync sweeper
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to YAML config file (optional)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for in-memory database
  -demo    Mount demo scenario endpoints

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the background sweeper
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/hr.db"

  # Run with config file and demo scenarios
  ./server -config=hr.yaml -demo

SEE ALSO:
  - config/config.go: YAML configuration
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/hr-engine/api"
	"github.com/warp/hr-engine/config"
	"github.com/warp/hr-engine/hr"
	"github.com/warp/hr-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config file path")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	demo := flag.Bool("demo", false, "mount demo scenario endpoints")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Domain wiring. One store implements every persistence interface.
	clock := hr.SystemClock{}
	reconciler := hr.NewReconciler(store)
	reconciler.Clock = clock
	reconciler.OpTimeout = cfg.Sync.OpTimeout

	leaves := &hr.LeaveService{
		Leaves:          store,
		Attendance:      store,
		Employees:       store,
		Runs:            store,
		Reconciler:      reconciler,
		Clock:           clock,
		MaxSyncAttempts: cfg.Sync.MaxAttempts,
	}
	reports := &hr.ReportAggregator{
		Employees:  store,
		Attendance: store,
		Leaves:     store,
	}

	cal, err := hr.NewCalendar(cfg.Timezone)
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}

	handler := api.NewHandler(leaves, reports, cal, store)
	handler.Resetter = store

	// Background sweeper finishes syncs interrupted by failures or restarts
	sweeper := api.NewSyncSweeper(leaves)
	sweeper.SweepInterval = cfg.Sync.SweepInterval
	sweeper.Start()

	opts := api.RouterOptions{EnableScenarios: *demo}
	if cfg.Auth.Enabled {
		opts.AuthSecret = cfg.Auth.Secret
	}
	router := api.NewRouter(handler, opts)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
