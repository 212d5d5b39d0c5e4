// Package persistence selects a concrete sample store implementation.
package persistence

import (
	"fmt"

	"ancientdna/internal/infra/persistence/memory"
	"ancientdna/internal/infra/persistence/postgres"
	"ancientdna/internal/infra/persistence/sqlite"
	"ancientdna/pkg/domain"
)

// Driver identifies a concrete storage implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (default, matches the service's process-lifetime store)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// Config carries the storage selection resolved from process configuration.
type Config struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
}

// Open constructs the configured store. An empty driver defaults to memory so
// the process keeps the original in-memory lifecycle unless persistence is
// explicitly requested.
func Open(cfg Config) (domain.SampleStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = string(DriverMemory)
	}
	switch Driver(driver) {
	case DriverMemory:
		return memory.NewStore(), nil
	case DriverSQLite:
		return sqlite.NewStore(cfg.SQLitePath)
	case DriverPostgres:
		return postgres.NewStore(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
