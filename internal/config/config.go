package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/config.yaml"

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Booking    BookingConfig    `yaml:"booking"`
	Payments   PaymentsConfig   `yaml:"payments"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	// DSN selects the driver: postgres:// URLs use PostgreSQL, anything else is a SQLite path.
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	SlowQuery       time.Duration `yaml:"slow_query"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

// RateLimitConfig bounds booking writes per principal. Requests/Window drive
// the Redis fixed window; RPS/Burst drive the in-process fallback.
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
	RPS      float64       `yaml:"rps"`
	Burst    int           `yaml:"burst"`
}

type BookingConfig struct {
	MaxGuests              int `yaml:"max_guests"`
	MaxNights              int `yaml:"max_nights"`
	MaxAdvanceDays         int `yaml:"max_advance_days"`
	MaintenanceWarningDays int `yaml:"maintenance_warning_days"`
	MaxSlotGenerationDays  int `yaml:"max_slot_generation_days"`
}

type PaymentsConfig struct {
	Provider      string `yaml:"provider"`
	InternalToken string `yaml:"internal_token"`
}

// Load reads the YAML file at path (CONFIG_PATH or configs/config.yaml when
// empty), expanding ${VAR} references from the environment and an optional
// .env file. A missing file yields defaults plus environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := Parse(data, &cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Parse decodes YAML after environment expansion.
func Parse(data []byte, cfg *Config) error {
	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		c.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		c.Redis.Address = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_ENV")); v != "" {
		c.App.Environment = v
	}
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("PAYMENTS_INTERNAL_TOKEN")); v != "" {
		c.Payments.InternalToken = v
	}
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "tierraalta"
	}
	if c.App.Environment == "" {
		c.App.Environment = "dev"
	}
	c.App.Environment = strings.ToLower(strings.TrimSpace(c.App.Environment))
	if c.App.Version == "" {
		c.App.Version = "dev"
	}

	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 30 * time.Second
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}

	if c.Database.DSN == "" {
		c.Database.DSN = "tierraalta.db"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.SlowQuery == 0 {
		c.Database.SlowQuery = 200 * time.Millisecond
	}

	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}

	c.Auth.applyDefaults()

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 30
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 1
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}

	c.Booking.applyDefaults()

	if c.Payments.Provider == "" {
		c.Payments.Provider = "gateway"
	}
}

func (b *BookingConfig) applyDefaults() {
	if b.MaxGuests == 0 {
		b.MaxGuests = 10
	}
	if b.MaxNights == 0 {
		b.MaxNights = 365
	}
	if b.MaxAdvanceDays == 0 {
		b.MaxAdvanceDays = 730
	}
	if b.MaintenanceWarningDays == 0 {
		b.MaintenanceWarningDays = 3
	}
	if b.MaxSlotGenerationDays == 0 {
		b.MaxSlotGenerationDays = 366
	}
}

// DefaultBooking returns the business limits used when no config is supplied.
func DefaultBooking() BookingConfig {
	var b BookingConfig
	b.applyDefaults()
	return b
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port %d is out of range", c.HTTP.Port)
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == c.HTTP.Port {
		return errors.New("monitoring.prometheus_port must differ from http.port")
	}
	if err := c.Auth.validate(c.App.Environment); err != nil {
		return err
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate_limit requires positive requests, window and burst")
	}

	b := c.Booking
	if b.MaxGuests <= 0 || b.MaxNights <= 0 || b.MaxAdvanceDays <= 0 || b.MaintenanceWarningDays < 0 || b.MaxSlotGenerationDays <= 0 {
		return errors.New("booking limits must be positive")
	}

	if isProdLike(c.App.Environment) && strings.TrimSpace(c.Payments.InternalToken) == "" {
		return errors.New("in prod/release payments.internal_token must be set")
	}
	return nil
}

// IsDevelopment reports whether the environment allows development defaults.
func (c *Config) IsDevelopment() bool {
	return !isProdLike(c.App.Environment)
}
