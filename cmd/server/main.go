package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/moimlab/settleup/internal/config"
	"github.com/moimlab/settleup/internal/roles"
	"github.com/moimlab/settleup/internal/server"
	"github.com/moimlab/settleup/internal/service"
	"github.com/moimlab/settleup/internal/storage/sqlite"
	"github.com/moimlab/settleup/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	// Initialize SQLite storage; this also runs the schema migration.
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	// Role presets: the roster file when configured, otherwise the built-in
	// defaults. The resolver only ever sees what is passed here.
	presets := roles.DefaultPresets()
	if cfg.RosterPath != "" {
		presets, err = config.LoadRoster(cfg.RosterPath)
		if err != nil {
			slog.Error("Failed to load roster", "path", cfg.RosterPath, "error", err)
			os.Exit(1)
		}
		slog.Info("Roster loaded", "path", cfg.RosterPath)
	}
	resolver := roles.NewResolver(presets)

	handler := server.New(
		service.NewEventService(store),
		service.NewBucketService(store),
		service.NewParticipantService(store, resolver),
	)

	// Wrap with h2c to speak HTTP/2 without TLS.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
