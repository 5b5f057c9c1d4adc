package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pollboard/pollboard/internal/config"
	"github.com/pollboard/pollboard/internal/lib/sl"
	"github.com/pollboard/pollboard/internal/repo/postgres"
	"github.com/pollboard/pollboard/internal/sheets"
	"github.com/pollboard/pollboard/utils"
)

// One-shot job: copy all poll and response data into the configured
// spreadsheet. Run it from cron or by hand; there is no retry.
func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/local.yaml", "path to config file")
	flag.Parse()

	cfg := config.Load(configPath)
	log := utils.New(cfg.Env)

	if cfg.Sheets.SpreadsheetID == "" {
		log.Error("sheets.spreadsheet_id is not configured")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer storage.Close()

	exporter, err := sheets.New(ctx, log, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
	if err != nil {
		log.Error("failed to build sheets client", sl.Err(err))
		os.Exit(1)
	}

	polls, err := storage.GetPolls(ctx)
	if err != nil {
		log.Error("failed to load polls", sl.Err(err))
		os.Exit(1)
	}

	responses, err := storage.GetResponses(ctx)
	if err != nil {
		log.Error("failed to load responses", sl.Err(err))
		os.Exit(1)
	}

	if err := exporter.Export(ctx, polls, responses); err != nil {
		log.Error("export failed", sl.Err(err))
		os.Exit(1)
	}

	log.Info("export finished", slog.Int("polls", len(polls)), slog.Int("responses", len(responses)))
}
