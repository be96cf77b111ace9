package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"planner/internal/config"
	"planner/internal/db"
	"planner/internal/engine"
	"planner/internal/repo"
	"planner/internal/store"
)

// InitDatabase prepares the data directory, creates the schema if needed and
// returns an engine bound to the store along with the database file path.
// The caller owns the store and closes it through Engine.Repo.Store at exit.
func InitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (engine.Engine, string, error) {
	if cfg == nil {
		return engine.Engine{}, "", fmt.Errorf("config not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return engine.Engine{}, "", fmt.Errorf("invalid config: %w", err)
	}
	dbCfg := db.Config{DataDir: cfg.Storage.DataDir, FileName: cfg.Storage.File}
	logger.Debug().Str("path", db.Path(dbCfg)).Msg("opening database")
	s, err := store.Open(ctx, dbCfg)
	if err != nil {
		logger.Error().Err(err).Str("path", db.Path(dbCfg)).Msg("failed to initialize database")
		return engine.Engine{}, "", err
	}
	policy := repo.Lenient
	if cfg.Storage.StrictLists {
		policy = repo.Strict
	}
	r := repo.Repo{Store: s, Decode: policy}
	logger.Debug().Str("path", s.Path()).Int("schema_version", s.SchemaVersion()).Bool("strict_lists", cfg.Storage.StrictLists).Msg("database ready")
	return engine.New(r, cfg), s.Path(), nil
}
