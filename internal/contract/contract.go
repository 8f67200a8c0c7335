// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/benchboard/benchboard/schema"
)

// SystemStore defines the persistence operations for submitted systems.
// This allows the benchmark composer and API handlers to be tested without a database.
type SystemStore interface {
	// CreateSystem stores a system and its outputs. It assigns the id and timestamps
	// and returns the stored document.
	CreateSystem(ctx context.Context, sys schema.System, outputs []schema.SystemOutput) (schema.System, error)

	// GetSystem returns one system, or a NotFoundError.
	GetSystem(ctx context.Context, systemID string) (schema.System, error)

	// FindSystems returns a page of matching systems and the total match count.
	// Datasets in the query are OR-ed; every other filter is AND-ed.
	FindSystems(ctx context.Context, query schema.SystemQuery) ([]schema.System, int, error)

	// GetSystemOutputs returns stored outputs of a system. An empty id list returns
	// the first limit outputs.
	GetSystemOutputs(ctx context.Context, systemID string, outputIDs []string, limit int) ([]schema.SystemOutput, error)

	// DeleteSystem removes a system and its outputs, or returns a NotFoundError.
	DeleteSystem(ctx context.Context, systemID string) error

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// StoreManager defines the interface for accessing the configured system store.
type StoreManager interface {
	GetSystemStore() SystemStore
}

// ConfigLoader defines the source of benchmark configurations.
type ConfigLoader interface {
	// Load returns the config for a benchmark id, or a NotFoundError.
	Load(ctx context.Context, benchmarkID string) (*schema.BenchmarkConfig, error)

	// List returns every config, ordered by file name.
	List(ctx context.Context) ([]*schema.BenchmarkConfig, error)
}
