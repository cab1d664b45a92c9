// Package container provides dependency injection for the fliptrack
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rgriggs0072/fliptrack-ai/internal/config"
	"github.com/rgriggs0072/fliptrack-ai/internal/engine"
	"github.com/rgriggs0072/fliptrack-ai/internal/labeling"
	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/normalizer"
	"github.com/rgriggs0072/fliptrack-ai/internal/service"
	"github.com/rgriggs0072/fliptrack-ai/internal/storage"
	"github.com/rgriggs0072/fliptrack-ai/internal/store"
)

// Container holds all application dependencies and provides methods to
// access them. It is immutable after creation; dependencies are reached
// only through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	synonyms normalizer.SynonymTable
	vendors  *store.VendorStore
	adapter  labeling.Adapter
	engine   *engine.Engine
	store    storage.Store
	imports  *service.ImportService
}

// NewContainer creates and wires all application dependencies.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	synonyms, err := store.LoadSynonyms(cfg.Data.SynonymsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load synonym table: %w", err)
	}

	vendors, err := store.NewVendorStore(cfg.Data.VendorsPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor mappings: %w", err)
	}

	var adapter labeling.Adapter
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		gemini, err := labeling.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model,
			time.Duration(cfg.AI.TimeoutSeconds)*time.Second, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		adapter = gemini
		logger.Info("AI labeling enabled", logging.Field{Key: "model", Value: cfg.AI.Model})
	} else {
		adapter = labeling.NewKeywordClient()
		logger.Info("AI labeling disabled, using keyword rules")
	}
	adapter = labeling.NewRetryingAdapter(adapter, cfg.AI.Retries,
		time.Duration(cfg.AI.BackoffMillis)*time.Millisecond, logger)

	eng := engine.New(
		normalizer.New(synonyms, logger),
		adapter,
		vendors,
		logger,
		engine.Options{
			AcceptanceThreshold: cfg.Import.AcceptanceThreshold,
			Workers:             cfg.Import.Workers,
			AutoLearn:           cfg.Import.AutoLearn,
		},
	)

	var db storage.Store
	if cfg.Data.DatabasePath != "" {
		sqlStore, err := storage.NewSQLiteStore(cfg.Data.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open expense database: %w", err)
		}
		db = sqlStore
	}

	imports := service.New(eng, db, logger)

	logger.Info("Container initialized successfully",
		logging.Field{Key: "ai_enabled", Value: cfg.AI.Enabled},
		logging.Field{Key: "workers", Value: cfg.Import.Workers})

	return &Container{
		logger:   logger,
		config:   cfg,
		synonyms: synonyms,
		vendors:  vendors,
		adapter:  adapter,
		engine:   eng,
		store:    db,
		imports:  imports,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetEngine returns the categorization engine.
func (c *Container) GetEngine() *engine.Engine {
	return c.engine
}

// GetImportService returns the import service.
func (c *Container) GetImportService() *service.ImportService {
	return c.imports
}

// GetVendorStore returns the vendor mapping store.
func (c *Container) GetVendorStore() *store.VendorStore {
	return c.vendors
}

// Close flushes learned vendor mappings and releases the database handle.
func (c *Container) Close() error {
	if c.vendors != nil {
		if err := c.vendors.Save(); err != nil {
			c.logger.WithError(err).Warn("Failed to save vendor mappings")
		}
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			return err
		}
	}
	c.logger.Info("Container closed")
	return nil
}
