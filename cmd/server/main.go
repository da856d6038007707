/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the pump production tracking server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Restore floor state from the store
  4. Configure HTTP router
  5. Start background auto-scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port                   HTTP server port (default: 8080)
  -db                     SQLite database path (default: pumpline.db)
                          Use ":memory:" for in-memory database
  -autoschedule-interval  Background auto-schedule interval (default: 15m,
                          0 disables)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the background scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/pumpline.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port, no background scheduling
  ./server -port=3000 -autoschedule-interval=0

ENVIRONMENT:
  No environment variables currently. All config via flags.
  Future: DATABASE_URL, PORT, LOG_LEVEL

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
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

	"github.com/warp/pumpline/api"
	"github.com/warp/pumpline/catalog"
	"github.com/warp/pumpline/production"
	"github.com/warp/pumpline/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "pumpline.db", "SQLite database path")
	interval := flag.Duration("autoschedule-interval", 15*time.Minute, "background auto-schedule interval (0 disables)")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize floor
	cat := catalog.Standard()
	floor := production.NewFloor(cat, store, store)
	if err := floor.Restore(context.Background()); err != nil {
		log.Fatalf("Failed to restore floor state: %v", err)
	}

	// Create router
	handler := api.NewHandler(floor, cat)
	router := api.NewRouter(handler)

	// Background scheduler
	scheduler := api.NewAutoScheduler(floor)
	if *interval <= 0 {
		scheduler.Enabled = false
	} else {
		scheduler.CheckInterval = *interval
	}
	scheduler.Start()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	scheduler.Stop()
	log.Println("Server stopped")
}
