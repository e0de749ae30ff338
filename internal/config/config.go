// Package config provides application configuration loaded from defaults,
// an optional config.yaml and environment variables (highest precedence).
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/diewo77/sp-admin/internal/logger"
	"github.com/diewo77/sp-admin/internal/remote"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Remote   RemoteConfig
	Session  SessionConfig
	Admin    AdminConfig
	Log      logger.Config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig selects the local admin store. Driver is sqlite or postgres.
type DatabaseConfig struct {
	Driver string
	// Path is the sqlite database file.
	Path string
	// DSN, when set, overrides the discrete postgres settings.
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
}

// RemoteConfig points at the service-provider REST API.
type RemoteConfig struct {
	BaseURL             string
	UploadsBaseURL      string
	PlaceholderImageURL string
	Timeout             time.Duration

	BreakerFailures  int
	BreakerSuccesses int
	BreakerCooldown  time.Duration
	BreakerHalfOpen  int
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// AdminConfig is the superadmin seeded on startup. Seeding is skipped when
// Password is empty.
type AdminConfig struct {
	Username string
	Password string
	Name     string
}

const devSecret = "dev-insecure-session-secret"

// PostgresDSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Breaker converts the breaker settings for the remote client.
func (r RemoteConfig) Breaker() remote.BreakerConfig {
	return remote.BreakerConfig{
		FailureThreshold:    r.BreakerFailures,
		SuccessThreshold:    r.BreakerSuccesses,
		Cooldown:            r.BreakerCooldown,
		HalfOpenMaxRequests: r.BreakerHalfOpen,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("server_read_timeout", 15*time.Second)
	v.SetDefault("server_write_timeout", 30*time.Second)
	v.SetDefault("server_idle_timeout", 60*time.Second)

	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_path", "sp-admin.db")
	v.SetDefault("database_dsn", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "spadmin")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "spadmin")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("dev", false)
	v.SetDefault("migrations", true)

	v.SetDefault("api_base_url", "https://serviceprovidersback.onrender.com/api")
	v.SetDefault("uploads_base_url", "https://serviceprovidersback.onrender.com/uploads/profileimg")
	v.SetDefault("placeholder_image_url", "https://i.pinimg.com/736x/cb/45/72/cb4572f19ab7505d552206ed5dfb3739.jpg")
	v.SetDefault("remote_timeout", 15*time.Second)

	b := remote.DefaultBreakerConfig()
	v.SetDefault("breaker_failures", b.FailureThreshold)
	v.SetDefault("breaker_successes", b.SuccessThreshold)
	v.SetDefault("breaker_cooldown", b.Cooldown)
	v.SetDefault("breaker_half_open", b.HalfOpenMaxRequests)

	v.SetDefault("session_secret", "")
	v.SetDefault("session_ttl", 12*time.Hour)
	v.SetDefault("session_secure", false)

	v.SetDefault("admin_username", "admin")
	v.SetDefault("admin_password", "")
	v.SetDefault("admin_name", "Super Admin")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// Load reads configuration. dirs are searched for config.yaml (default ".");
// a missing file is not an error.
func Load(dirs ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config.yaml: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("port"),
			ReadTimeout:  v.GetDuration("server_read_timeout"),
			WriteTimeout: v.GetDuration("server_write_timeout"),
			IdleTimeout:  v.GetDuration("server_idle_timeout"),
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("db_driver"),
			Path:     v.GetString("db_path"),
			DSN:      v.GetString("database_dsn"),
			Host:     v.GetString("db_host"),
			Port:     v.GetInt("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		App: AppConfig{
			Dev:        v.GetBool("dev"),
			Migrations: v.GetBool("migrations"),
		},
		Remote: RemoteConfig{
			BaseURL:             v.GetString("api_base_url"),
			UploadsBaseURL:      v.GetString("uploads_base_url"),
			PlaceholderImageURL: v.GetString("placeholder_image_url"),
			Timeout:             v.GetDuration("remote_timeout"),
			BreakerFailures:     v.GetInt("breaker_failures"),
			BreakerSuccesses:    v.GetInt("breaker_successes"),
			BreakerCooldown:     v.GetDuration("breaker_cooldown"),
			BreakerHalfOpen:     v.GetInt("breaker_half_open"),
		},
		Session: SessionConfig{
			Secret: v.GetString("session_secret"),
			TTL:    v.GetDuration("session_ttl"),
			Secure: v.GetBool("session_secure"),
		},
		Admin: AdminConfig{
			Username: v.GetString("admin_username"),
			Password: v.GetString("admin_password"),
			Name:     v.GetString("admin_name"),
		},
		Log: logger.Config{
			Level:       v.GetString("log_level"),
			Format:      v.GetString("log_format"),
			Development: v.GetBool("dev"),
		},
	}

	if cfg.Session.Secret == "" {
		if !cfg.App.Dev {
			return nil, errors.New("config: SESSION_SECRET is required outside dev mode")
		}
		cfg.Session.Secret = devSecret
	}
	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("config: unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	return cfg, nil
}
