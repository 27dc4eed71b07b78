// Package config loads PoliPredict settings from the environment.
package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Catalog source kinds.
const (
	CatalogSourceCSV     = "csv"
	CatalogSourceHistory = "history"
)

// Config holds all configuration for PoliPredict.
type Config struct {
	ModelPath       string
	ModelEndpoint   string
	ModelTimeoutMs  int
	ModelMaxRetries int

	CategoriesCSV string
	CatalogSource string
	DBPath        string

	LogLevel slog.Level
	LogCalls bool

	Addr        string
	CORSOrigins []string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	dbPath := filepath.Join(".polipredict", "polipredict.db")
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, dbPath)
	}
	return Config{
		ModelPath:       "polipredict_gb_model.json",
		ModelTimeoutMs:  5000,
		ModelMaxRetries: 1,
		CategoriesCSV:   "indicadores_doctorado_grupos.csv",
		CatalogSource:   CatalogSourceCSV,
		DBPath:          dbPath,
		LogLevel:        slog.LevelInfo,
		Addr:            ":8080",
		CORSOrigins:     []string{"*"},
	}
}

// Load reads a .env file if present, then environment variables, falling
// back to defaults for any unset or invalid values.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("POLIPREDICT_MODEL_PATH"); v != "" {
		cfg.ModelPath = v
	}
	if v := os.Getenv("POLIPREDICT_MODEL_ENDPOINT"); v != "" {
		cfg.ModelEndpoint = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("POLIPREDICT_MODEL_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ModelTimeoutMs = n
		}
	}
	if v := os.Getenv("POLIPREDICT_MODEL_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ModelMaxRetries = n
		}
	}
	if v := os.Getenv("POLIPREDICT_CATEGORIES_CSV"); v != "" {
		cfg.CategoriesCSV = v
	}
	if v := strings.ToLower(os.Getenv("POLIPREDICT_CATALOG_SOURCE")); v == CatalogSourceCSV || v == CatalogSourceHistory {
		cfg.CatalogSource = v
	}
	if v := os.Getenv("POLIPREDICT_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("POLIPREDICT_LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			cfg.LogLevel = lvl
		}
	}
	if v := os.Getenv("POLIPREDICT_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("POLIPREDICT_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("POLIPREDICT_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}

	return cfg
}

// UseRemoteModel reports whether predictions go to a model server instead
// of the local artifact.
func (c Config) UseRemoteModel() bool {
	return c.ModelEndpoint != ""
}

// NewLogger builds the process logger writing text records to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}
