package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	Archive ArchiveConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	UI      UIConfig
	Session SessionConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type ArchiveConfig struct {
	BaseURL           string
	Timeout           time.Duration
	DirectoryCacheTTL time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a query audit database is configured.
func (c DBConfig) Enabled() bool {
	return c.Host != ""
}

// Enabled reports whether a shared directory cache is configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type JWTConfig struct {
	Enabled      bool
	Secret       string
	AccessExpiry time.Duration
}

// UIConfig restricts which application entities each access location offers.
// An empty list leaves the location unrestricted.
type UIConfig struct {
	InternalAets []string
	ExternalAets []string
	SuperRoles   []string
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ARCHIVE_URL", "http://localhost:8080/dcm4chee-arc")
	viper.SetDefault("JWT_ENABLED", true)
	viper.SetDefault("UI_SUPER_ROLES", "root,admin")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	archiveTimeout := parseDuration("ARCHIVE_TIMEOUT", 30*time.Second)
	directoryTTL := parseDuration("ARCHIVE_DIRECTORY_CACHE_TTL", 5*time.Minute)
	accessExpiry := parseDuration("JWT_ACCESS_EXPIRY", 15*time.Minute)
	sessionTTL := parseDuration("SESSION_TTL", 30*time.Minute)
	sessionCleanup := parseDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute)

	config := &Config{
		App: AppConfig{
			Port:     viper.GetString("APP_PORT"),
			Env:      viper.GetString("APP_ENV"),
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		Archive: ArchiveConfig{
			BaseURL:           strings.TrimRight(viper.GetString("ARCHIVE_URL"), "/"),
			Timeout:           archiveTimeout,
			DirectoryCacheTTL: directoryTTL,
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Enabled:      viper.GetBool("JWT_ENABLED"),
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		UI: UIConfig{
			InternalAets: splitList(viper.GetString("UI_INTERNAL_AETS")),
			ExternalAets: splitList(viper.GetString("UI_EXTERNAL_AETS")),
			SuperRoles:   splitList(viper.GetString("UI_SUPER_ROLES")),
		},
		Session: SessionConfig{
			TTL:             sessionTTL,
			CleanupInterval: sessionCleanup,
		},
	}

	if config.JWT.Enabled && config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required when JWT_ENABLED is true")
	}

	return config, nil
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}
