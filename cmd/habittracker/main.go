package main

import (
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/conorfennell/habittracker/internal/backup"
	"github.com/conorfennell/habittracker/internal/config"
	"github.com/conorfennell/habittracker/internal/storage"
	"github.com/conorfennell/habittracker/internal/web"
	"github.com/spf13/pflag"
)

func main() {
	// 1. Load flags, config file and environment
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// 2. Open the database
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	slog.Info("Database opened successfully", "path", cfg.DBPath)

	// 3. One-shot actions
	switch {
	case cfg.Import != "":
		if err := importFile(db, cfg.Import); err != nil {
			log.Fatalf("Failed to import %s: %v", cfg.Import, err)
		}
		return
	case cfg.Backup:
		if _, err := backup.Snapshot(db, cfg.BackupDir, time.Now()); err != nil {
			log.Fatalf("Failed to back up to %s: %v", cfg.BackupDir, err)
		}
		return
	}

	// 4. Serve the form
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewServer(db, cfg.BackupDir),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("Habit tracker listening", "url", "http://"+cfg.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func importFile(db *storage.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := backup.Restore(db, f)
	if err != nil {
		return err
	}
	slog.Info("Import finished", "path", path, "records", n)
	return nil
}
