// Package conf loads and holds the application configuration.
package conf

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Log rotation strategies.
const (
	RotationDaily  = "daily"
	RotationWeekly = "weekly"
	RotationSize   = "size"
)

// LogConfig holds settings shared by all rotating file loggers.
type LogConfig struct {
	Enabled  bool   // true to enable file logging
	Path     string // directory for log files
	Rotation string // daily, weekly or size
	MaxSize  int64  // max size in bytes for size rotation
}

// WebServerSettings holds the HTTP server configuration.
type WebServerSettings struct {
	Enabled bool   // true to enable the API server
	Port    string // port to listen on
	Debug   bool   // true to enable debug request logging
}

// SecuritySettings holds access control configuration.
type SecuritySettings struct {
	AdminToken string // static token guarding the admin endpoints
}

// DatabaseSettings selects and configures the storage backend.
type DatabaseSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// SQLiteSettings configures the SQLite backend.
type SQLiteSettings struct {
	Enabled bool
	Path    string // path to the database file
}

// MySQLSettings configures the MySQL backend.
type MySQLSettings struct {
	Enabled  bool
	Username string
	Password string
	Database string
	Host     string
	Port     string
}

// EnrichmentSettings configures the Wikidata/Wikimedia enrichment pipeline.
type EnrichmentSettings struct {
	Enabled       bool
	SearchURL     string        // wbsearchentities endpoint
	EntityURL     string        // Special:EntityData base, %s for the entity id
	CommonsAPIURL string        // Commons action API endpoint
	UploadHost    string        // direct upload host for hashed file URLs
	Timeout       time.Duration // per-request timeout
	CacheTTL      time.Duration // memoization TTL
	ThumbnailSize int           // pithumbsize for thumbnail queries
	UserAgent     string
	Debug         bool
}

// GBIFSettings configures the GBIF importer.
type GBIFSettings struct {
	APIURL          string
	SpeciesLimit    int           // species fetched per import run
	OccurrenceLimit int           // occurrences fetched per species
	RateLimit       time.Duration // minimum delay between API calls
}

// SpeciesDataSettings configures the seed loader.
type SpeciesDataSettings struct {
	SeedFile string // path to the seed JSON file
}

// Settings is the root configuration structure.
type Settings struct {
	Debug bool

	Main struct {
		Name string // instance name, used in log attributes
	}

	Log        LogConfig
	WebServer  WebServerSettings
	Security   SecuritySettings
	Database   DatabaseSettings
	Enrichment EnrichmentSettings
	GBIF       GBIFSettings
	Species    SpeciesDataSettings
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment into a Settings
// instance and installs it as the singleton.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := validateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	settingsInstance = settings

	return settings, nil
}

func initViper() error {
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/ecoatlas")
	viper.AddConfigPath("/etc/ecoatlas")

	viper.SetEnvPrefix("ecoatlas")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("No config file found, using defaults")
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetSettings returns the current settings instance.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the settings instance, loading it on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				panic(fmt.Sprintf("failed to load settings: %v", err))
			}
		}
	})
	return GetSettings()
}

func validateSettings(settings *Settings) error {
	if settings.WebServer.Enabled && settings.WebServer.Port == "" {
		return fmt.Errorf("webserver port must not be empty when the server is enabled")
	}
	if settings.Database.SQLite.Enabled && settings.Database.MySQL.Enabled {
		return fmt.Errorf("only one database backend may be enabled")
	}
	if settings.Database.SQLite.Enabled && settings.Database.SQLite.Path == "" {
		return fmt.Errorf("sqlite path must not be empty when sqlite is enabled")
	}
	if settings.Enrichment.Enabled && settings.Enrichment.Timeout <= 0 {
		return fmt.Errorf("enrichment timeout must be positive")
	}
	if settings.GBIF.SpeciesLimit < 0 || settings.GBIF.OccurrenceLimit < 0 {
		return fmt.Errorf("gbif limits must not be negative")
	}
	return nil
}
