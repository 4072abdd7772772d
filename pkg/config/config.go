// Package config loads server configuration from a YAML file with
// MISSIONHUB_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"missionhub/pkg/logger"
)

// EnvPrefix is prepended to every override, e.g. MISSIONHUB_DATABASE_HOST
const EnvPrefix = "MISSIONHUB"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	JWT       JWTConfig       `yaml:"jwt"`
	Logging   logger.Config   `yaml:"logging"`
	Feed      FeedConfig      `yaml:"feed"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Mode            string        `yaml:"mode"` // gin mode: debug, release, test
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	Timeout         time.Duration `yaml:"timeout"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// RedisConfig is optional; an empty URL disables caching
type RedisConfig struct {
	URL string `yaml:"url"`
}

// StorageConfig points at an S3 compatible object store for submission media
type StorageConfig struct {
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Bucket        string `yaml:"bucket"`
	UseSSL        bool   `yaml:"use_ssl"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	Issuer     string        `yaml:"issuer"`
	Expiration time.Duration `yaml:"expiration"`
}

type FeedConfig struct {
	Limit                   int           `yaml:"limit"`
	SubmissionWindow        int           `yaml:"submission_window"`
	ProfileWindow           int           `yaml:"profile_window"`
	SourceTimeout           time.Duration `yaml:"source_timeout"`
	CacheTTL                time.Duration `yaml:"cache_ttl"`
	DropEmptyProfileChanges bool          `yaml:"drop_empty_profile_changes"`
}

type GRPCConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// RateLimitConfig bounds per-user mutation rates
type RateLimitConfig struct {
	LikesPerSecond       float64 `yaml:"likes_per_second"`
	LikesBurst           int     `yaml:"likes_burst"`
	SubmissionsPerMinute float64 `yaml:"submissions_per_minute"`
	SubmissionsBurst     int     `yaml:"submissions_burst"`
}

// Default returns the development configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            "release",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  50 << 20,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "missionhub",
			Password:        "missionhub_dev_password",
			Database:        "missionhub_dev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Timeout:         5 * time.Second,
			AutoMigrate:     true,
		},
		Storage: StorageConfig{
			Bucket: "submissions-media",
		},
		JWT: JWTConfig{
			Secret:     "change-me-in-production",
			Issuer:     "missionhub",
			Expiration: 24 * time.Hour,
		},
		Logging: logger.Config{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Feed: FeedConfig{
			Limit:            10,
			SubmissionWindow: 10,
			ProfileWindow:    5,
			SourceTimeout:    3 * time.Second,
			CacheTTL:         15 * time.Second,
		},
		GRPC: GRPCConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    9090,
		},
		RateLimit: RateLimitConfig{
			LikesPerSecond:       2,
			LikesBurst:           5,
			SubmissionsPerMinute: 6,
			SubmissionsBurst:     3,
		},
	}
}

// Load reads path (optional; missing file keeps defaults) and applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.applyEnv(v)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type envBinder struct {
	v *viper.Viper
}

func (b envBinder) set(key string) bool {
	_ = b.v.BindEnv(key)
	return b.v.IsSet(key)
}

func (b envBinder) str(key string, dst *string) {
	if b.set(key) {
		*dst = b.v.GetString(key)
	}
}

func (b envBinder) integer(key string, dst *int) {
	if b.set(key) {
		*dst = b.v.GetInt(key)
	}
}

func (b envBinder) float(key string, dst *float64) {
	if b.set(key) {
		*dst = b.v.GetFloat64(key)
	}
}

func (b envBinder) boolean(key string, dst *bool) {
	if b.set(key) {
		*dst = b.v.GetBool(key)
	}
}

func (b envBinder) duration(key string, dst *time.Duration) {
	if b.set(key) {
		*dst = b.v.GetDuration(key)
	}
}

func (b envBinder) list(key string, dst *[]string) {
	if b.set(key) {
		parts := strings.Split(b.v.GetString(key), ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}

func (c *Config) applyEnv(v *viper.Viper) {
	b := envBinder{v: v}

	b.str("server.host", &c.Server.Host)
	b.integer("server.port", &c.Server.Port)
	b.str("server.mode", &c.Server.Mode)
	b.list("server.allowed_origins", &c.Server.AllowedOrigins)

	b.str("database.host", &c.Database.Host)
	b.integer("database.port", &c.Database.Port)
	b.str("database.user", &c.Database.User)
	b.str("database.password", &c.Database.Password)
	b.str("database.database", &c.Database.Database)
	b.str("database.sslmode", &c.Database.SSLMode)
	b.integer("database.max_open_conns", &c.Database.MaxOpenConns)
	b.boolean("database.auto_migrate", &c.Database.AutoMigrate)

	b.str("redis.url", &c.Redis.URL)

	b.str("storage.endpoint", &c.Storage.Endpoint)
	b.str("storage.access_key", &c.Storage.AccessKey)
	b.str("storage.secret_key", &c.Storage.SecretKey)
	b.str("storage.bucket", &c.Storage.Bucket)
	b.boolean("storage.use_ssl", &c.Storage.UseSSL)
	b.str("storage.public_base_url", &c.Storage.PublicBaseURL)

	b.str("jwt.secret", &c.JWT.Secret)
	b.str("jwt.issuer", &c.JWT.Issuer)
	b.duration("jwt.expiration", &c.JWT.Expiration)

	b.str("logging.level", &c.Logging.Level)
	b.str("logging.format", &c.Logging.Format)
	b.str("logging.output", &c.Logging.Output)

	b.integer("feed.limit", &c.Feed.Limit)
	b.duration("feed.cache_ttl", &c.Feed.CacheTTL)
	b.duration("feed.source_timeout", &c.Feed.SourceTimeout)
	b.boolean("feed.drop_empty_profile_changes", &c.Feed.DropEmptyProfileChanges)

	b.boolean("grpc.enabled", &c.GRPC.Enabled)
	b.integer("grpc.port", &c.GRPC.Port)

	b.float("ratelimit.likes_per_second", &c.RateLimit.LikesPerSecond)
	b.integer("ratelimit.likes_burst", &c.RateLimit.LikesBurst)
	b.float("ratelimit.submissions_per_minute", &c.RateLimit.SubmissionsPerMinute)
	b.integer("ratelimit.submissions_burst", &c.RateLimit.SubmissionsBurst)
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("jwt.secret must be set")
	}
	if c.JWT.Expiration <= 0 {
		return errors.New("jwt.expiration must be positive")
	}
	if c.Feed.Limit <= 0 {
		return errors.New("feed.limit must be positive")
	}
	if c.Storage.Endpoint != "" && c.Storage.Bucket == "" {
		return errors.New("storage.bucket is required when storage.endpoint is set")
	}
	return nil
}

// Addr returns host:port for the HTTP listener
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (g GRPCConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}
