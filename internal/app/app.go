package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pollboard/pollboard/internal/app/http"
	"github.com/pollboard/pollboard/internal/blob"
	"github.com/pollboard/pollboard/internal/config"
	"github.com/pollboard/pollboard/internal/handlers"
	"github.com/pollboard/pollboard/internal/middleware"
	"github.com/pollboard/pollboard/internal/repo/postgres"
	"github.com/pollboard/pollboard/internal/services"
	"github.com/pollboard/pollboard/internal/sheets"
)

type App struct {
	HTTPServer *http.App
	PollBoard  *services.PollBoard
	storage    *postgres.Storage
}

func NewApp(log *slog.Logger, cfg *config.Config) *App {
	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		panic(err)
	}

	var files services.FileStore
	if cfg.Files.Bucket != "" {
		fileStore, err := blob.New(context.Background(), cfg.Files.CredentialsFile, cfg.Files.Bucket)
		if err != nil {
			panic(err)
		}
		files = fileStore
	} else {
		files = noopFileStore{}
	}

	pollBoard := services.NewPollBoard(log, storage, storage, storage, storage, files, cfg.Files.MaxUploadBytes)

	var exporter handlers.Exporter
	if cfg.Sheets.SpreadsheetID != "" {
		sheetExporter, err := sheets.New(context.Background(), log, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
		if err != nil {
			panic(err)
		}
		exporter = sheetExporter
	}

	pollHandler := handlers.NewPollHandler(pollBoard)
	adminHandler := handlers.NewAdminHandler(pollBoard, exporter)
	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.Secret)

	httpApp := http.NewApp(log, cfg.HTTP.Port, cfg.HTTP.AllowOrigins, pollHandler, adminHandler, authMiddleware)

	return &App{
		HTTPServer: httpApp,
		PollBoard:  pollBoard,
		storage:    storage,
	}
}

func (a *App) Stop(ctx context.Context) error {
	if err := a.HTTPServer.Stop(ctx); err != nil {
		return err
	}
	return a.storage.Close()
}

// noopFileStore stands in when no bucket is configured: uploads are rejected,
// deletes succeed so poll cleanup never blocks on a store that holds nothing.
type noopFileStore struct{}

func (noopFileStore) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	return "", fmt.Errorf("%w: file storage is not configured", services.ErrValidation)
}

func (noopFileStore) Delete(ctx context.Context, path string) error {
	return nil
}
