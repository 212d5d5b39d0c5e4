// Package domain defines the sample entities and storage contracts shared by
// the service layers and the persistence drivers.
package domain

import (
	"context"
	"fmt"
)

// Sample is the uploaded metadata record identifying one specimen.
type Sample struct {
	ID     string `json:"id"`
	Region string `json:"region"`
	Age    int    `json:"age"`
	Seed   string `json:"seed"`
}

// Snapshot captures a point-in-time clone of the store state in insertion
// order. Persistence drivers serialize it as a single payload.
type Snapshot struct {
	Samples []Sample `json:"samples"`
}

// SampleStore is the storage contract for uploaded samples. Upserting an
// existing id overwrites its attributes in place (last write wins, no merge)
// while keeping the entry's original position in iteration order. Entries
// are never deleted.
type SampleStore interface {
	// Upsert inserts or overwrites the entry for sample.ID.
	Upsert(ctx context.Context, sample Sample) error
	// UpsertBatch applies Upsert for each sample and reports how many
	// records were written.
	UpsertBatch(ctx context.Context, samples []Sample) (int, error)
	// Lookup returns the sample for id or ErrNotFound.
	Lookup(ctx context.Context, id string) (Sample, error)
	// List returns all samples in insertion/overwrite order.
	List(ctx context.Context) ([]Sample, error)

	// ExportState returns a deep copy of the current state.
	ExportState() Snapshot
	// ImportState replaces the current state with the snapshot contents.
	ImportState(Snapshot)

	Close() error
}

// ErrNotFound is returned when a sample id has no entry in the store.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("sample %s not found", e.ID)
}
