/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the equipment maintenance engine: SQLite-backed
  record store, HTTP surface, reminder scheduler, and backup scheduler.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load the settings document (dotenv file)
  3. Initialize the SQLite repository and record store
  4. Create the API handler and router
  5. Start the schedulers and HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080)
  -db        SQLite database path (default: maintenance.db)
             Use ":memory:" for an in-memory database
  -settings  Settings document path (default: .env)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop both schedulers
  2. Stop accepting new connections, drain requests (30s timeout)
  3. Close the database
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Background tasks
  - store/sqlite/sqlite.go: Repository implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/medequip/maintenance-engine/api"
	"github.com/medequip/maintenance-engine/maintenance"
	"github.com/medequip/maintenance-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "maintenance.db", "SQLite database path")
	settingsPath := flag.String("settings", ".env", "settings document path")
	flag.Parse()

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Make file-based settings visible to the process environment too.
	if err := godotenv.Load(*settingsPath); err != nil {
		log.Infof("settings file %s not loaded into environment: %v", *settingsPath, err)
	}
	settings := maintenance.NewEnvFileLoader(*settingsPath, log)

	// Initialize repository and store
	repo, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer repo.Close()

	store := maintenance.NewStore(repo, log)
	handler := api.NewHandler(store, settings, log)
	router := api.NewRouter(handler)

	// Background tasks. The notification sink and backup function are
	// collaborators; the defaults log the digest and snapshot the database
	// file. Deployments swap in real transports.
	reminders := api.NewReminderScheduler(store, settings, maintenance.LogSink{Log: log}, log)
	reminders.Start()
	defer reminders.Stop()

	backups := api.NewBackupScheduler(settings, fileBackup(*dbPath, log), log)
	backups.Start()
	defer backups.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped")
}

// fileBackup snapshots the database file into a backups/ directory next to
// it. A stand-in collaborator: real deployments inject their own archiver.
func fileBackup(dbPath string, log logrus.FieldLogger) api.BackupFunc {
	return func(ctx context.Context) error {
		if dbPath == ":memory:" {
			return nil
		}
		src, err := os.Open(dbPath)
		if err != nil {
			return err
		}
		defer src.Close()

		dir := filepath.Join(filepath.Dir(dbPath), "backups")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		name := fmt.Sprintf("%s.%s", filepath.Base(dbPath), time.Now().Format("20060102-150405"))
		dst, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		defer dst.Close()

		if _, err := io.Copy(dst, src); err != nil {
			return err
		}
		log.Infof("database snapshot written to %s", dst.Name())
		return nil
	}
}
