package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/benchboard/benchboard/schema"
)

// Default values for configuration.
const (
	DefaultEnv          = "development"
	DefaultAddr         = ":8080"
	DefaultConfigDir    = "benchmark_configs"
	DefaultPageSize     = 20
	MaxPageSize         = 1000
	DefaultPrecision    = 4
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 60 * time.Second

	// MaxOutputsPerRequest caps the outputs returned for one system.
	MaxOutputsPerRequest = 10

	// DateTimeFormat is the timestamp layout used in tables and CSV files.
	DateTimeFormat = "2006-01-02 15:04:05"
)

// APIVersion is the version reported by the info endpoint.
const APIVersion = "0.2.0"

// Config holds the runtime configuration of the server and CLI.
// This struct remains the "final, validated" config.
type Config struct {
	Env       string
	Addr      string
	AuthURL   string
	ConfigDir string

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	Output     schema.OutputMode
	OutputFile string
	View       string
	RankBy     string // Column label to rank by (empty = row mean)
	Limit      int    // Systems shown per view (0 = all)
	Width      int    // Terminal width override (0 = auto-detect)
	Precision  int
	UseColors  bool

	PageSize     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Env            string `mapstructure:"env"`
	ConfigDir      string `mapstructure:"config-dir"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Precision      int    `mapstructure:"precision"`
	Color          string `mapstructure:"color"`

	// --- Fields from serveCmd.Flags() ---
	Addr         string `mapstructure:"addr"`
	AuthURL      string `mapstructure:"auth-url"`
	ReadTimeout  string `mapstructure:"read-timeout"`
	WriteTimeout string `mapstructure:"write-timeout"`

	// --- Fields from benchmarkCmd.Flags() ---
	View   string `mapstructure:"view"`
	RankBy string `mapstructure:"rank-by"`
	Limit  int    `mapstructure:"limit"`

	// --- Fields from systemsCmd.Flags() ---
	PageSize int `mapstructure:"page-size"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := processTimeouts(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfig validates the store backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// validateSimpleInputs processes and validates all non-backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.View = input.View
	cfg.RankBy = input.RankBy
	cfg.Width = input.Width
	cfg.AuthURL = input.AuthURL

	cfg.Env = input.Env
	if cfg.Env == "" {
		cfg.Env = DefaultEnv
	}
	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	cfg.ConfigDir = input.ConfigDir
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = DefaultConfigDir
	}

	// Parse color flag
	if input.Color == "" {
		cfg.UseColors = true
	} else {
		colors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid --color value: %w", err)
		}
		cfg.UseColors = colors
	}

	// --- 1. Precision Validation ---
	precision := input.Precision
	if precision == 0 {
		precision = DefaultPrecision
	}
	if precision < 1 || precision > 8 {
		return fmt.Errorf("precision must be between 1 and 8 (received %d)", precision)
	}
	cfg.Precision = precision

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 3. Result Limit Validation ---
	if input.Limit < 0 {
		return fmt.Errorf("limit must be zero or positive (received %d)", input.Limit)
	}
	cfg.Limit = input.Limit

	// --- 4. Page Size Validation ---
	if input.PageSize < 0 || input.PageSize > MaxPageSize {
		return fmt.Errorf("page size must be between 0 and %d (received %d)", MaxPageSize, input.PageSize)
	}
	cfg.PageSize = input.PageSize
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}

	return nil
}

// processTimeouts parses the server timeouts.
func processTimeouts(cfg *Config, input *ConfigRawInput) error {
	var err error
	if cfg.ReadTimeout, err = parseDurationOr(input.ReadTimeout, DefaultReadTimeout); err != nil {
		return fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.WriteTimeout, err = parseDurationOr(input.WriteTimeout, DefaultWriteTimeout); err != nil {
		return fmt.Errorf("invalid write timeout: %w", err)
	}
	return nil
}

func parseDurationOr(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive (received %s)", s)
	}
	return d, nil
}
