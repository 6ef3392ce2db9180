// Package app wires configuration into the services shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/johnquangdev/opportunity-notes/internal/adapter/handler"
	"github.com/johnquangdev/opportunity-notes/internal/adapter/repository"
	"github.com/johnquangdev/opportunity-notes/internal/domain/repositories"
	"github.com/johnquangdev/opportunity-notes/internal/infrastructure/cache"
	"github.com/johnquangdev/opportunity-notes/internal/infrastructure/database"
	"github.com/johnquangdev/opportunity-notes/internal/infrastructure/storage"
	"github.com/johnquangdev/opportunity-notes/internal/usecase/crm"
	"github.com/johnquangdev/opportunity-notes/internal/usecase/notes"
	"github.com/johnquangdev/opportunity-notes/pkg/ai"
	"github.com/johnquangdev/opportunity-notes/pkg/config"
)

// App holds the wired services
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Notes       *notes.NotesService
	Transcriber ai.Transcriber
	Pusher      crm.Pusher
	// Archive is nil unless ARCHIVE_ENABLED
	Archive *storage.MinIOClient

	closers []func() error
}

// NewLogger returns a production logger in production and a development logger otherwise
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// New connects every configured backend. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	runs, err := a.runStore()
	if err != nil {
		a.Close()
		return nil, err
	}

	guard, err := a.guard(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var archiver notes.RunArchiver
	if cfg.Archive.Enabled {
		logger.Info("📦 Connecting to archive storage...", zap.String("endpoint", cfg.Archive.Endpoint))
		a.Archive, err = storage.NewMinIOClient(ctx, &cfg.Archive, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		archiver = a.Archive
	}

	gen, err := ai.NewTextGenerator(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize LLM backend: %w", err)
	}
	logger.Info("🤖 LLM backend ready", zap.String("backend", cfg.LLM.Backend), zap.String("model", gen.Name()))

	a.Transcriber, err = ai.NewTranscriber(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize transcription backend: %w", err)
	}

	a.Notes = notes.NewNotesService(gen, runs, guard, archiver, notes.Options{
		DefaultInitials: cfg.LLM.Initials,
		JobTimeout:      cfg.LLM.Timeout,
		GuardTTL:        cfg.Redis.GuardTTL,
	}, logger)
	a.Pusher = crm.NewPushService(&cfg.Salesforce, nil, logger)

	return a, nil
}

// Router builds the HTTP router over the wired services
func (a *App) Router() *handler.Router {
	var exportArchiver handler.ExportArchiver
	if a.Archive != nil {
		exportArchiver = a.Archive
	}
	return handler.NewRouter(
		a.Config,
		handler.NewNotesHandler(a.Notes, a.Pusher, exportArchiver, a.Logger),
		handler.NewTranscriptsHandler(a.Transcriber, a.Logger),
		a.Notes.ModelName(),
	)
}

// Close releases connections in reverse order of opening
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.Logger != nil {
			a.Logger.Warn("⚠️ Failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
}

func (a *App) runStore() (repositories.RunRepository, error) {
	cfg := a.Config
	if cfg.RunStore.Driver == config.StoreFile {
		dir := filepath.Join(cfg.Paths.DataDir, "runs")
		a.Logger.Info("📦 Using file run store", zap.String("dir", dir))
		return repository.NewRunFileRepository(dir)
	}

	a.Logger.Info("📦 Connecting to database...", zap.String("driver", cfg.RunStore.Driver))
	db, dialect, err := database.Open(cfg, a.Logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { return database.CloseDB(db) })

	if cfg.Database.AutoMigrate {
		if cfg.IsProduction() && dialect == "postgres" {
			return nil, fmt.Errorf("DB_AUTO_MIGRATE is enabled in production; apply migrations with sql-migrate instead")
		}
		if err := database.AutoMigrate(db, dialect, a.Logger); err != nil {
			return nil, err
		}
	} else {
		a.Logger.Info("🔄 Skipping migrations; manage schema with sql-migrate")
	}
	return repository.NewRunRepository(db), nil
}

func (a *App) guard(ctx context.Context) (repositories.GenerationGuard, error) {
	if !a.Config.Redis.Enabled {
		store := cache.NewMemoryStore()
		a.closers = append(a.closers, store.Close)
		return store, nil
	}

	a.Logger.Info("📦 Connecting to Redis...", zap.String("addr", a.Config.GetRedisAddr()))
	client, err := cache.NewRedisClient(ctx, a.Config)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return cache.NewRedisGuard(client), nil
}
