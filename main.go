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
	_ "modernc.org/sqlite"

	"github.com/mhartman/whodunit/cliparse"
	"github.com/mhartman/whodunit/db"
	"github.com/mhartman/whodunit/game"
	"github.com/mhartman/whodunit/middleware"
	"github.com/mhartman/whodunit/notify"
	"github.com/mhartman/whodunit/router"
)

func main() {
	var err error

	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	driver := "postgres"
	if cfg.DatabaseType == "sqlite" {
		driver = "sqlite"
	}

	dbConn, err := sql.Open(driver, cfg.DatabaseURL)
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
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Realtime feed: Postgres fans out via LISTEN/NOTIFY so every
	// instance sees every event; SQLite mode is single-instance and
	// publishes straight to the hub.
	hub := notify.NewHub()
	var notifier notify.Notifier
	if cfg.DatabaseType == "postgres" {
		notifier = notify.NewPGNotifier(dbConn)
		go func() {
			if err := notify.Listen(cfg.DatabaseURL, hub); err != nil {
				slog.Error("event listener stopped", "error", err)
			}
		}()
	} else {
		notifier = notify.NewLocalNotifier(hub)
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, notifier, hub, game.NewRand())

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
