// Package store persists coding run history. The store is optional:
// callers treat failures as warnings so a broken database never sinks
// a run whose results already landed on disk.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/ese-lab/ragcoder/internal/config"
	"github.com/ese-lab/ragcoder/internal/model"
)

// Store defines the run-history persistence interface.
type Store interface {
	SaveRun(ctx context.Context, run *model.Run) error
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	Migrate(ctx context.Context) error
	Close() error
}

// New builds a Store from configuration. Driver "off" returns a store
// that discards everything.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "off":
		return NoopStore{}, nil
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// NoopStore satisfies Store without persisting anything.
type NoopStore struct{}

func (NoopStore) SaveRun(context.Context, *model.Run) error { return nil }

func (NoopStore) ListRuns(context.Context, int) ([]model.Run, error) { return nil, nil }

func (NoopStore) Migrate(context.Context) error { return nil }

func (NoopStore) Close() error { return nil }
