package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	App     AppConfig
	Cache   CacheConfig
	UserDB  UserDBConfig
	PrintDB PrintDBConfig
	Label   LabelConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"gemstock-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// CacheConfig holds Redis settings for the shared label cart.
type CacheConfig struct {
	Type string `envconfig:"CART_TYPE" default:"memory"` // memory or redis

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// UserDBConfig holds MySQL connection settings for the central back-office
// user directory. Optional: when unreachable, the users table in the print
// store is used instead.
type UserDBConfig struct {
	Enabled  bool   `envconfig:"USER_DB_ENABLED" default:"false"`
	Host     string `envconfig:"USER_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"USER_DB_PORT" default:"3306"`
	Name     string `envconfig:"USER_DB_NAME" default:"gemstock"`
	User     string `envconfig:"USER_DB_USER" default:"root"`
	Password string `envconfig:"USER_DB_PASS" default:""`
}

// PrintDBConfig holds the print store settings.
type PrintDBConfig struct {
	Type string `envconfig:"PRINT_DB_TYPE" default:"sqlite"` // sqlite or postgres
	Path string `envconfig:"PRINT_DB_PATH" default:"./data/gemstock.db"`
	// PostgreSQL settings
	Host     string `envconfig:"PRINT_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"PRINT_DB_PORT" default:"5432"`
	Name     string `envconfig:"PRINT_DB_NAME" default:"gemstock"`
	User     string `envconfig:"PRINT_DB_USER" default:"postgres"`
	Password string `envconfig:"PRINT_DB_PASS" default:""`
	SSLMode  string `envconfig:"PRINT_DB_SSLMODE" default:"disable"`
}

// LabelConfig holds SKU and print-job behavior knobs.
type LabelConfig struct {
	// SuffixPadding is the zero-padded width of the SKU uniqueness suffix.
	SuffixPadding int `envconfig:"SKU_SUFFIX_PADDING" default:"6"`

	// FallbackCode substitutes a code fragment whose lookup missed.
	FallbackCode string `envconfig:"SKU_FALLBACK_CODE" default:"XX"`

	// MissingItemPolicy is "skip" (drop unknown inventory ids from a job)
	// or "fail" (abort the whole job).
	MissingItemPolicy string `envconfig:"JOB_MISSING_ITEM_POLICY" default:"skip"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (p *PrintDBConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Name, p.SSLMode)
}

// DSN returns the MySQL data source name for the user directory.
func (u *UserDBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		u.User, u.Password, u.Host, u.Port, u.Name)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
