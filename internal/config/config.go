package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath         string
	ServerAddr           string
	DataDir              string
	ManifestFile         string
	ArchiveURL           string
	FetchTimeoutSec      int
	WorkerPollIntervalMS int
}

func Load(path string) (Config, error) {
	cfg := Config{
		DatabasePath:         "datadesc.db",
		ServerAddr:           ":8080",
		DataDir:              "data",
		ManifestFile:         "datasets.json",
		FetchTimeoutSec:      60,
		WorkerPollIntervalMS: 2000,
	}

	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	cfg.DatabasePath = getenv("DATABASE_PATH", cfg.DatabasePath)
	cfg.ServerAddr = getenv("SERVER_ADDR", cfg.ServerAddr)
	cfg.DataDir = getenv("DATA_DIR", cfg.DataDir)
	cfg.ManifestFile = getenv("MANIFEST_FILE", cfg.ManifestFile)
	cfg.ArchiveURL = os.Getenv("ARCHIVE_URL")

	if v := os.Getenv("FETCH_TIMEOUT_SECONDS"); v != "" {
		if err := parseInt(&cfg.FetchTimeoutSec, v); err != nil {
			return Config{}, fmt.Errorf("FETCH_TIMEOUT_SECONDS: %w", err)
		}
	}
	if v := os.Getenv("WORKER_POLL_INTERVAL_MS"); v != "" {
		if err := parseInt(&cfg.WorkerPollIntervalMS, v); err != nil {
			return Config{}, fmt.Errorf("WORKER_POLL_INTERVAL_MS: %w", err)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseInt(target *int, value string) error {
	var parsed int
	_, err := fmt.Sscanf(value, "%d", &parsed)
	if err != nil {
		return err
	}
	*target = parsed
	return nil
}
