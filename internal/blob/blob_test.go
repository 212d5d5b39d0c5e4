package blob

import (
	"context"
	"io"
	"strings"
	"testing"
)

// exerciseStore drives the common Store contract shared by all drivers.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	info, err := store.Put(ctx, "uploads/a.csv", strings.NewReader("id,region,age,seed\n"), PutOptions{ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "uploads/a.csv" || info.Size != 19 {
		t.Fatalf("unexpected info %+v", info)
	}

	if _, err := store.Put(ctx, "uploads/a.csv", strings.NewReader("x"), PutOptions{}); err == nil {
		t.Fatalf("expected create-only violation")
	}

	got, rc, err := store.Get(ctx, "uploads/a.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "id,region,age,seed\n" {
		t.Fatalf("unexpected content %q", data)
	}
	if got.Size != 19 {
		t.Fatalf("unexpected get info %+v", got)
	}

	if _, err := store.Head(ctx, "uploads/a.csv"); err != nil {
		t.Fatalf("head: %v", err)
	}

	if _, err := store.Put(ctx, "other/b.csv", strings.NewReader("x"), PutOptions{}); err != nil {
		t.Fatalf("put other: %v", err)
	}
	infos, err := store.List(ctx, "uploads/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "uploads/a.csv" {
		t.Fatalf("unexpected list %+v", infos)
	}

	existed, err := store.Delete(ctx, "uploads/a.csv")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	if _, err := store.Head(ctx, "uploads/a.csv"); err == nil {
		t.Fatalf("expected head failure after delete")
	}
}

func TestMemoryStoreContract(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFilesystemStoreContract(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new fs: %v", err)
	}
	exerciseStore(t, store)
}

func TestS3StoreContract(t *testing.T) {
	exerciseStore(t, NewS3Mock())
}

func TestFilesystemRejectsTraversal(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new fs: %v", err)
	}
	if _, err := store.Put(context.Background(), "../escape", strings.NewReader("x"), PutOptions{}); err == nil {
		t.Fatalf("expected traversal rejection")
	}
	if _, err := store.Put(context.Background(), "/abs", strings.NewReader("x"), PutOptions{}); err == nil {
		t.Fatalf("expected absolute key rejection")
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, Config{Driver: string(DriverMemory)})
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}

	if _, err := Open(ctx, Config{Driver: "gcs"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := Open(ctx, Config{Driver: string(DriverS3)}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}
