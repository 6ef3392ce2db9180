package main

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/opportunity-notes/internal/app"
	"github.com/johnquangdev/opportunity-notes/internal/infrastructure/database"
	"github.com/johnquangdev/opportunity-notes/pkg/config"
)

type commandContext struct {
	verbose *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	app *app.App
}

func newCommandContext(verbose *bool) *commandContext {
	return &commandContext{verbose: verbose}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load()
	})
	return c.config, c.configErr
}

// withApp wires services, runs fn and releases connections
func (c *commandContext) withApp(ctx context.Context, fn func(*app.App) error) error {
	a, err := c.ensureApp(ctx)
	if err != nil {
		return err
	}
	defer c.close()
	return fn(a)
}

func (c *commandContext) ensureApp(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if c.verbose != nil && *c.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *commandContext) close() {
	if c.app == nil {
		return
	}
	c.app.Close()
	_ = c.app.Logger.Sync()
	c.app = nil
}

// withDatabase opens the relational run store without wiring the rest of the app
func (c *commandContext) withDatabase(fn func(db *gorm.DB, dialect string) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if cfg.RunStore.Driver == config.StoreFile {
		return fmt.Errorf("RUN_STORE=file has no schema to migrate")
	}

	db, dialect, err := database.Open(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = database.CloseDB(db) }()
	return fn(db, dialect)
}
