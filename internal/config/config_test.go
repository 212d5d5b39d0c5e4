package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ANCIENTDNA_ADDR", "GEMINI_API_KEY",
		"ANCIENTDNA_STORAGE_DRIVER", "ANCIENTDNA_SQLITE_PATH", "ANCIENTDNA_POSTGRES_DSN",
		"ANCIENTDNA_BLOB_DRIVER", "ANCIENTDNA_BLOB_FS_ROOT", "ANCIENTDNA_BLOB_S3_BUCKET",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Addr != ":8000" {
		t.Fatalf("default addr %q", cfg.Addr)
	}
	if cfg.GeminiAPIKey != "" {
		t.Fatalf("expected empty api key, got %q", cfg.GeminiAPIKey)
	}
	if cfg.Storage.Driver != "" {
		t.Fatalf("expected empty storage driver, got %q", cfg.Storage.Driver)
	}
	if cfg.ArchiveEnabled() {
		t.Fatalf("archive should be disabled without a blob driver")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ANCIENTDNA_ADDR", ":9100")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("ANCIENTDNA_STORAGE_DRIVER", "sqlite")
	t.Setenv("ANCIENTDNA_SQLITE_PATH", "/tmp/samples.db")
	t.Setenv("ANCIENTDNA_BLOB_DRIVER", "s3")
	t.Setenv("ANCIENTDNA_BLOB_S3_BUCKET", "dig-archive")
	t.Setenv("ANCIENTDNA_BLOB_S3_PATH_STYLE", "true")

	cfg := Load()
	if cfg.Addr != ":9100" {
		t.Fatalf("addr %q", cfg.Addr)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Fatalf("api key %q", cfg.GeminiAPIKey)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.SQLitePath != "/tmp/samples.db" {
		t.Fatalf("storage config %+v", cfg.Storage)
	}
	if cfg.Blob.S3Bucket != "dig-archive" || !cfg.Blob.S3PathStyle {
		t.Fatalf("blob config %+v", cfg.Blob)
	}
	if !cfg.ArchiveEnabled() {
		t.Fatalf("archive should be enabled for the s3 driver")
	}
}

func TestArchiveEnabledFilesystemNeedsRoot(t *testing.T) {
	cfg := Config{}
	cfg.Blob.Driver = "fs"
	if cfg.ArchiveEnabled() {
		t.Fatalf("fs driver without a root should not enable the archive")
	}
	cfg.Blob.FSRoot = t.TempDir()
	if !cfg.ArchiveEnabled() {
		t.Fatalf("fs driver with a root should enable the archive")
	}
}
