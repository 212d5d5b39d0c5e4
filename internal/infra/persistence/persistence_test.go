package persistence

import (
	"path/filepath"
	"testing"
)

func TestOpenDefaultsToMemory(t *testing.T) {
	store, err := Open(Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	if snapshot := store.ExportState(); len(snapshot.Samples) != 0 {
		t.Fatalf("expected empty store")
	}
}

func TestOpenSQLite(t *testing.T) {
	store, err := Open(Config{Driver: string(DriverSQLite), SQLitePath: filepath.Join(t.TempDir(), "s.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	_ = store.Close()
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "etcd"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
