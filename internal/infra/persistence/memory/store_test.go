package memory

import (
	"context"
	"errors"
	"testing"

	"ancientdna/pkg/domain"
)

func TestUpsertLookupOverwrite(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, domain.Sample{ID: "A1", Region: "Andes", Age: 500, Seed: "x"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := store.Lookup(ctx, "A1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Region != "Andes" || got.Age != 500 || got.Seed != "x" {
		t.Fatalf("unexpected sample %+v", got)
	}

	// identical re-add leaves the entry unchanged
	if err := store.Upsert(ctx, domain.Sample{ID: "A1", Region: "Andes", Age: 500, Seed: "x"}); err != nil {
		t.Fatalf("idempotent upsert: %v", err)
	}
	again, _ := store.Lookup(ctx, "A1")
	if again != got {
		t.Fatalf("idempotent upsert changed entry: %+v", again)
	}

	// overwrite replaces every field, no merge
	if err := store.Upsert(ctx, domain.Sample{ID: "A1", Region: "Alps", Age: 900, Seed: "y"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	replaced, _ := store.Lookup(ctx, "A1")
	if replaced.Region != "Alps" || replaced.Age != 900 || replaced.Seed != "y" {
		t.Fatalf("overwrite did not replace fields: %+v", replaced)
	}
}

func TestLookupNotFound(t *testing.T) {
	store := NewStore()
	_, err := store.Lookup(context.Background(), "missing")
	var nf domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if nf.ID != "missing" {
		t.Fatalf("unexpected id %q", nf.ID)
	}
}

func TestListOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	ids := []string{"c", "a", "b"}
	for i, id := range ids {
		if err := store.Upsert(ctx, domain.Sample{ID: id, Region: "R", Age: i, Seed: "s"}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}
	// overwriting keeps the original position
	if err := store.Upsert(ctx, domain.Sample{ID: "a", Region: "R2", Age: 99, Seed: "s"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(list))
	}
	for i, id := range ids {
		if list[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, list[i].ID)
		}
	}
	if list[1].Region != "R2" || list[1].Age != 99 {
		t.Fatalf("overwrite not visible in list: %+v", list[1])
	}
}

func TestUpsertBatchCount(t *testing.T) {
	store := NewStore()
	n, err := store.UpsertBatch(context.Background(), []domain.Sample{
		{ID: "a"}, {ID: "b"}, {ID: "a"},
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 records written, got %d", n)
	}
	list, _ := store.List(context.Background())
	if len(list) != 2 {
		t.Fatalf("expected 2 distinct samples, got %d", len(list))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	if _, err := store.UpsertBatch(ctx, []domain.Sample{
		{ID: "b", Region: "Alps", Age: 1, Seed: "y"},
		{ID: "a", Region: "Andes", Age: 2, Seed: "x"},
	}); err != nil {
		t.Fatalf("batch: %v", err)
	}
	snapshot := store.ExportState()

	store.ImportState(domain.Snapshot{})
	if list, _ := store.List(ctx); len(list) != 0 {
		t.Fatalf("expected cleared state, got %d samples", len(list))
	}

	store.ImportState(snapshot)
	list, _ := store.List(ctx)
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
		t.Fatalf("restore lost order: %+v", list)
	}
}
