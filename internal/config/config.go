package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration. It is read once at startup
// and stays static for the lifetime of the process.
type Config struct {
	Env          string `envconfig:"APP_ENV" default:"development"`
	Port         int    `envconfig:"APP_PORT" default:"9091"`
	SitePassword string `envconfig:"SITE_PASSWORD" required:"true"`
	BabyBirthday string `envconfig:"BABY_BIRTHDAY" default:"2024-01-01"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigin   string `envconfig:"CORS_ORIGIN" default:"http://localhost:3000"`
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Storage      StorageConfig
	Upload       UploadConfig
}

// database configuration
type DBConfig struct {
	URL             string        `envconfig:"DATABASE_URL" required:"true"`
	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns        int32         `envconfig:"DB_MIN_CONNS" default:"5"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// redis configuration
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// SessionConfig controls the shared-password session cookie.
type SessionConfig struct {
	CookieName   string        `envconfig:"SESSION_COOKIE_NAME" default:"bt_session"`
	TTL          time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SecureCookie bool          `envconfig:"SESSION_SECURE_COOKIE" default:"false"`
	InFlightTTL  time.Duration `envconfig:"INFLIGHT_TTL" default:"2m"`
}

// StorageConfig selects and configures the object store.
type StorageConfig struct {
	Driver             string   `envconfig:"STORAGE_DRIVER" default:"local"`
	FirebaseProjectID  string   `envconfig:"FIREBASE_PROJECT_ID"`
	ServiceAccountPath string   `envconfig:"FIREBASE_SERVICE_ACCOUNT_PATH"`
	PhotosBucket       string   `envconfig:"PHOTOS_BUCKET" default:"photos"`
	VideosBucket       string   `envconfig:"VIDEOS_BUCKET" default:"videos"`
	LocalDir           string   `envconfig:"LOCAL_STORAGE_DIR" default:"./data/media"`
	PublicBaseURL      string   `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:9091"`
	ImageHosts         []string `envconfig:"IMAGE_HOSTS" default:"localhost,storage.googleapis.com,firebasestorage.googleapis.com"`
}

// UploadConfig bounds staging and uploads.
type UploadConfig struct {
	StagingDir     string        `envconfig:"STAGING_DIR" default:"./data/staging"`
	MaxBytes       int64         `envconfig:"MAX_UPLOAD_BYTES" default:"104857600"`
	MaxStagedFiles int           `envconfig:"MAX_STAGED_FILES" default:"9"`
	CommitTimeout  time.Duration `envconfig:"COMMIT_TIMEOUT" default:"10m"`
}

const (
	DriverLocal    = "local"
	DriverFirebase = "firebase"
)

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Env] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Env)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", c.Port)
	}
	if c.SitePassword == "" {
		return fmt.Errorf("SITE_PASSWORD must not be empty")
	}
	if _, err := time.Parse("2006-01-02", c.BabyBirthday); err != nil {
		return fmt.Errorf("BABY_BIRTHDAY must be a YYYY-MM-DD date: %w", err)
	}
	if c.DB.MinConns > c.DB.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DB.MinConns, c.DB.MaxConns)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	switch c.Storage.Driver {
	case DriverLocal:
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("LOCAL_STORAGE_DIR is required for the local driver")
		}
	case DriverFirebase:
		if c.Storage.FirebaseProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firebase driver")
		}
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER: %s (must be local or firebase)", c.Storage.Driver)
	}
	if _, err := url.ParseRequestURI(c.Storage.PublicBaseURL); err != nil {
		return fmt.Errorf("PUBLIC_BASE_URL is not a valid URL: %w", err)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.Upload.MaxStagedFiles < 1 {
		return fmt.Errorf("MAX_STAGED_FILES must be at least 1")
	}
	return nil
}

// Buckets maps the logical bucket names to the configured physical ones.
func (s StorageConfig) Buckets() map[string]string {
	return map[string]string{
		"photos": s.PhotosBucket,
		"videos": s.VideosBucket,
	}
}

// MediaSources returns the CSP source list for remotely hosted media.
func (s StorageConfig) MediaSources() string {
	sources := []string{"'self'", "blob:", "data:"}
	for _, h := range s.ImageHosts {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if strings.Contains(h, "://") {
			sources = append(sources, h)
			continue
		}
		sources = append(sources, "https://"+h, "http://"+h)
	}
	return strings.Join(sources, " ")
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
