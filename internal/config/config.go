// Package config resolves runtime settings from the environment. A .env file
// in the working directory is loaded first when present, matching how the
// service is run in development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"ancientdna/internal/blob"
	"ancientdna/internal/infra/persistence"
)

// Config carries everything the server needs to start.
type Config struct {
	Addr         string
	GeminiAPIKey string

	Storage persistence.Config
	Blob    blob.Config
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:         envOr("ANCIENTDNA_ADDR", ":8000"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		Storage: persistence.Config{
			Driver:      os.Getenv("ANCIENTDNA_STORAGE_DRIVER"),
			SQLitePath:  os.Getenv("ANCIENTDNA_SQLITE_PATH"),
			PostgresDSN: os.Getenv("ANCIENTDNA_POSTGRES_DSN"),
		},
		Blob: blob.Config{
			Driver:      os.Getenv("ANCIENTDNA_BLOB_DRIVER"),
			FSRoot:      os.Getenv("ANCIENTDNA_BLOB_FS_ROOT"),
			S3Bucket:    os.Getenv("ANCIENTDNA_BLOB_S3_BUCKET"),
			S3Region:    os.Getenv("ANCIENTDNA_BLOB_S3_REGION"),
			S3Endpoint:  os.Getenv("ANCIENTDNA_BLOB_S3_ENDPOINT"),
			S3PathStyle: envBool("ANCIENTDNA_BLOB_S3_PATH_STYLE"),
		},
	}
}

// ArchiveEnabled reports whether an upload archive was configured.
func (c Config) ArchiveEnabled() bool {
	switch blob.Driver(c.Blob.Driver) {
	case blob.DriverFilesystem:
		return c.Blob.FSRoot != ""
	case "":
		return false
	default:
		return true
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return v
}
