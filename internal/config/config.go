// Package config loads quizbank settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all quizbank configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Categories CategoriesConfig `yaml:"categories"`
	Export     ExportConfig     `yaml:"export"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// StorageConfig selects the question table backend.
type StorageConfig struct {
	Driver      string `yaml:"driver"`       // csv, sqlite, postgres, memory
	Path        string `yaml:"path"`         // csv backing file
	SQLitePath  string `yaml:"sqlite_path"`  // sqlite database file
	PostgresDSN string `yaml:"postgres_dsn"` // postgres connection string
}

// CategoriesConfig configures the category side-store.
type CategoriesConfig struct {
	Path     string   `yaml:"path"`
	Defaults []string `yaml:"defaults"`
}

// ExportConfig configures document rendering and the artifact archive.
type ExportConfig struct {
	PDFFontPath string        `yaml:"pdf_font_path"`
	Title       string        `yaml:"title"`
	Archive     ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig selects where exported documents are published.
type ArchiveConfig struct {
	Driver string   `yaml:"driver"` // none, fs, s3, memory
	FSRoot string   `yaml:"fs_root"`
	S3     S3Config `yaml:"s3"`
}

// S3Config addresses an S3 or MinIO bucket.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`   // empty means stderr
}

// MetricsConfig configures the metrics dump.
type MetricsConfig struct {
	// Textfile, when set, receives the Prometheus text exposition after
	// each command.
	Textfile string `yaml:"textfile"`
}

// ErrInvalidConfig marks validation failures.
var ErrInvalidConfig = errors.New("invalid config")

var (
	storageDrivers = []string{"csv", "sqlite", "postgres", "memory"}
	archiveDrivers = []string{"", "none", "fs", "s3", "memory"}
	logLevels      = []string{"debug", "info", "warn", "error"}
	logFormats     = []string{"json", "console"}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:     "csv",
			Path:       "database.csv",
			SQLitePath: "quizbank.db",
		},
		Categories: CategoriesConfig{
			Path:     "categories.csv",
			Defaults: []string{"General"},
		},
		Export: ExportConfig{
			Title:   "Question sheet",
			Archive: ArchiveConfig{Driver: "none", FSRoot: "exports"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides and validates the result. A missing file is an
// error only when path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from QUIZBANK_* variables.
//
//	QUIZBANK_STORAGE_DRIVER: csv|sqlite|postgres|memory
//	QUIZBANK_STORAGE_PATH: csv backing file
//	QUIZBANK_SQLITE_PATH: sqlite database file
//	QUIZBANK_POSTGRES_DSN: postgres DSN when driver=postgres
//	QUIZBANK_CATEGORY_PATH: category file
//	QUIZBANK_ARCHIVE_DRIVER: none|fs|s3|memory
//	QUIZBANK_ARCHIVE_FS_ROOT: directory root when archive driver=fs
//	QUIZBANK_ARCHIVE_S3_BUCKET / _REGION / _PREFIX / _ENDPOINT / _PATH_STYLE
//	QUIZBANK_PDF_FONT_PATH: TTF used for PDF text
//	QUIZBANK_LOG_LEVEL: debug|info|warn|error
//	QUIZBANK_METRICS_TEXTFILE: prometheus textfile target
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("QUIZBANK_STORAGE_DRIVER", &c.Storage.Driver)
	str("QUIZBANK_STORAGE_PATH", &c.Storage.Path)
	str("QUIZBANK_SQLITE_PATH", &c.Storage.SQLitePath)
	str("QUIZBANK_POSTGRES_DSN", &c.Storage.PostgresDSN)
	str("QUIZBANK_CATEGORY_PATH", &c.Categories.Path)
	str("QUIZBANK_ARCHIVE_DRIVER", &c.Export.Archive.Driver)
	str("QUIZBANK_ARCHIVE_FS_ROOT", &c.Export.Archive.FSRoot)
	str("QUIZBANK_ARCHIVE_S3_BUCKET", &c.Export.Archive.S3.Bucket)
	str("QUIZBANK_ARCHIVE_S3_REGION", &c.Export.Archive.S3.Region)
	str("QUIZBANK_ARCHIVE_S3_PREFIX", &c.Export.Archive.S3.Prefix)
	str("QUIZBANK_ARCHIVE_S3_ENDPOINT", &c.Export.Archive.S3.Endpoint)
	str("QUIZBANK_PDF_FONT_PATH", &c.Export.PDFFontPath)
	str("QUIZBANK_LOG_LEVEL", &c.Logging.Level)
	str("QUIZBANK_METRICS_TEXTFILE", &c.Metrics.Textfile)
	if v, ok := lookup("QUIZBANK_ARCHIVE_S3_PATH_STYLE"); ok && v != "" {
		c.Export.Archive.S3.PathStyle = strings.EqualFold(v, "true")
	}
}

// Validate rejects unknown drivers and levels.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(storageDrivers, c.Storage.Driver) {
		errs = append(errs, fmt.Errorf("storage.driver %q: want one of %s", c.Storage.Driver, strings.Join(storageDrivers, ", ")))
	}
	if c.Storage.Driver == "csv" && strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, errors.New("storage.path is required for the csv driver"))
	}
	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.PostgresDSN) == "" {
		errs = append(errs, errors.New("storage.postgres_dsn is required for the postgres driver"))
	}
	if strings.TrimSpace(c.Categories.Path) == "" {
		errs = append(errs, errors.New("categories.path is required"))
	}
	if !slices.Contains(archiveDrivers, c.Export.Archive.Driver) {
		errs = append(errs, fmt.Errorf("export.archive.driver %q: want one of none, fs, s3, memory", c.Export.Archive.Driver))
	}
	if c.Export.Archive.Driver == "s3" && c.Export.Archive.S3.Bucket == "" {
		errs = append(errs, errors.New("export.archive.s3.bucket is required for the s3 archive"))
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("logging.level %q: want one of %s", c.Logging.Level, strings.Join(logLevels, ", ")))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Logging.Format)) {
		errs = append(errs, fmt.Errorf("logging.format %q: want json or console", c.Logging.Format))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
