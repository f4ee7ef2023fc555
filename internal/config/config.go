// Package config loads the server configuration from CLI flags, environment
// variables and an optional .env file, and validates it before startup.
package config

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// MaxDBConns is the largest pool size pgxpool can represent.
	MaxDBConns = math.MaxInt32
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	ListenAddr      string
	APIPrefix       string
	CORSOrigin      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string

	// Store
	DatabaseDriver string // sqlite or postgres
	DatabaseURL    string // Postgres DSN
	DatabasePath   string // SQLite file
	DatabaseKey    string // optional SQLCipher key, 64 hex characters
	DBMaxConns     int
	InitSchema     bool // apply the bootstrap schema on startup (--init-schema)
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Flags are the CLI overrides accepted by the server binary.
type Flags struct {
	Addr       string
	EnvFile    string
	InitSchema bool
}

// ParseFlags parses CLI flags from args (normally os.Args[1:]).
func ParseFlags(args []string) (Flags, error) {
	var f Flags
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&f.Addr, "addr", "", "Listen address (overrides LISTEN_ADDR env var)")
	fs.StringVar(&f.EnvFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
	fs.BoolVar(&f.InitSchema, "init-schema", false, "Create the folders and notes tables if they do not exist")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	return f, nil
}

// LoadEnvFile loads variables from a dotenv file without overriding variables
// that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadConfig loads configuration from environment variables and CLI flag values.
func LoadConfig(f Flags) (*Config, error) {
	cfg := &Config{}

	// Server settings
	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", ":8000")
	if f.Addr != "" {
		cfg.ListenAddr = f.Addr
	}
	cfg.APIPrefix = normalizePrefix(getEnvOrDefault("API_PREFIX", "/api"))
	cfg.CORSOrigin = getEnvOrDefault("CORS_ORIGIN", "*")
	cfg.ReadTimeout = parseDurationOrDefault("READ_TIMEOUT", 15*time.Second)
	cfg.WriteTimeout = parseDurationOrDefault("WRITE_TIMEOUT", 15*time.Second)
	cfg.IdleTimeout = parseDurationOrDefault("IDLE_TIMEOUT", 60*time.Second)
	cfg.ShutdownTimeout = parseDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Store
	cfg.DatabaseDriver = strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.DatabasePath = getEnvOrDefault("DATABASE_PATH", "./data/noteful.db")
	cfg.DatabaseKey = strings.TrimSpace(os.Getenv("DATABASE_KEY"))
	cfg.DBMaxConns = parseIntOrDefault("DB_MAX_CONNS", 10)
	cfg.InitSchema = f.InitSchema || parseBoolOrDefault("INIT_SCHEMA", false)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.ListenAddr == "" {
		errs = append(errs, "LISTEN_ADDR must not be empty")
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			errs = append(errs, "DATABASE_PATH is required for the sqlite driver")
		}
		if c.DatabaseKey != "" {
			if _, err := hex.DecodeString(c.DatabaseKey); err != nil || len(c.DatabaseKey) != 64 {
				errs = append(errs, "DATABASE_KEY must be 64 hex characters (32 bytes)")
			}
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres driver")
		}
		if c.DatabaseKey != "" {
			errs = append(errs, "DATABASE_KEY is only supported by the sqlite driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("DATABASE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DatabaseDriver))
	}

	if c.DBMaxConns <= 0 || c.DBMaxConns > MaxDBConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS must be between 1 and %d", MaxDBConns))
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0 {
		errs = append(errs, "READ_TIMEOUT, WRITE_TIMEOUT and IDLE_TIMEOUT must be positive")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// PrintStartupSummary prints a human-readable summary of the configuration to stderr.
func (c *Config) PrintStartupSummary() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "noteful server starting...")
	switch c.DatabaseDriver {
	case DriverPostgres:
		fmt.Fprintln(os.Stderr, "  Store:   Postgres (DATABASE_URL)")
	default:
		encrypted := "plain"
		if c.DatabaseKey != "" {
			encrypted = "encrypted"
		}
		fmt.Fprintf(os.Stderr, "  Store:   SQLite %s (%s)\n", c.DatabasePath, encrypted)
	}
	fmt.Fprintf(os.Stderr, "  Listen:  %s\n", c.ListenAddr)
	fmt.Fprintf(os.Stderr, "  Prefix:  %s\n", displayPrefix(c.APIPrefix))
	fmt.Fprintln(os.Stderr, "")
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// normalizePrefix returns "" for the root or a prefix with a leading and no trailing slash.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}

func displayPrefix(prefix string) string {
	if prefix == "" {
		return "/"
	}
	return prefix
}
