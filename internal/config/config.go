package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apierrors "deliveryboard/internal/errors"
	"deliveryboard/internal/textreport"
	"deliveryboard/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment variable (BOARD_SERVER_PORT, ...)
const EnvPrefix = "BOARD"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Reports   ReportsConfig   `yaml:"reports" envconfig:"REPORTS"`
	Store     StoreConfig     `yaml:"store" envconfig:"STORE"`
	Schedule  ScheduleConfig  `yaml:"schedule" envconfig:"SCHEDULE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR"`
	WebDir  string `yaml:"web_dir" envconfig:"WEB_DIR"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// ReportsConfig describes where the ERP exports land and how to read them
type ReportsConfig struct {
	ReservationsDir string        `yaml:"reservations_dir" envconfig:"RESERVATIONS_DIR"`
	RequisitionsDir string        `yaml:"requisitions_dir" envconfig:"REQUISITIONS_DIR"`
	Encoding        string        `yaml:"encoding" envconfig:"ENCODING"`
	MaxRecords      int           `yaml:"max_records" envconfig:"MAX_RECORDS"`
	MaxFileBytes    int64         `yaml:"max_file_bytes" envconfig:"MAX_FILE_BYTES"`
	CompactColumns  bool          `yaml:"compact_columns" envconfig:"COMPACT_COLUMNS"`
	Timezone        string        `yaml:"timezone" envconfig:"TIMEZONE"`
	Watch           bool          `yaml:"watch" envconfig:"WATCH"`
	Debounce        time.Duration `yaml:"debounce" envconfig:"DEBOUNCE"`
}

// StoreConfig selects the confirmation store
type StoreConfig struct {
	// Driver is "sqlite" or "memory"
	Driver string `yaml:"driver" envconfig:"DRIVER"`
	Path   string `yaml:"path" envconfig:"DB_PATH"`
}

// ScheduleConfig holds cron expressions; empty disables a job
type ScheduleConfig struct {
	Refresh    string `yaml:"refresh" envconfig:"REFRESH"`
	Reclassify string `yaml:"reclassify" envconfig:"RECLASSIFY"`
}

// TelemetryConfig toggles metrics and tracing
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Metrics       bool   `yaml:"metrics" envconfig:"METRICS"`
	Tracing       bool   `yaml:"tracing" envconfig:"TRACING"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// Load builds the configuration from defaults, the first config file found
// (BOARD_CONFIG or the usual locations) and environment variables, in
// increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file; an empty path skips the file.
// Every failure is an *errors.AppError of type CONFIG.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apierrors.NewConfigError("failed to load config from file", err).WithContext("file", configFile)
		}
	}

	// Fields without a matching variable keep the file or default value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apierrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, apierrors.NewConfigError("failed to resolve paths", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apierrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// resolvePaths makes every configured directory absolute
func (c *Config) resolvePaths() error {
	for _, p := range []*string{
		&c.Paths.DataDir, &c.Paths.WebDir, &c.Paths.LogsDir,
		&c.Reports.ReservationsDir, &c.Reports.RequisitionsDir,
		&c.Store.Path, &c.Logging.FilePath,
	} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", *p, err)
		}
		*p = abs
	}
	return nil
}

// EnsureDirectories creates the directories the application writes to
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogsDir}
	if c.Store.Driver == StoreSQLite {
		dirs = append(dirs, filepath.Dir(c.Store.Path))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Location returns the time zone that decides what "today" is
func (c *Config) Location() (*time.Location, error) {
	switch tz := strings.TrimSpace(c.Reports.Timezone); tz {
	case "", "Local":
		return time.Local, nil
	default:
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
		}
		return loc, nil
	}
}

// ReportDirs maps each record kind to its watched directory
func (c *Config) ReportDirs() map[domain.RecordKind]string {
	return map[domain.RecordKind]string{
		domain.KindReservation: c.Reports.ReservationsDir,
		domain.KindRequisition: c.Reports.RequisitionsDir,
	}
}

// Store drivers
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	// Logs are always structured JSON
	c.Logging.Format = "json"
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %q (console, file or both)", c.Logging.Output)
	}

	if c.Reports.ReservationsDir == "" || c.Reports.RequisitionsDir == "" {
		return fmt.Errorf("both reservations_dir and requisitions_dir are required")
	}
	if _, err := textreport.LookupEncoding(c.Reports.Encoding); err != nil {
		return err
	}
	if c.Reports.MaxRecords < 0 {
		return fmt.Errorf("max_records must not be negative")
	}
	if c.Reports.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/board.log",
		},
		Paths: PathsConfig{
			DataDir: "data",
			WebDir:  "web",
			LogsDir: "logs",
		},
		Reports: ReportsConfig{
			ReservationsDir: "exports/reservas",
			RequisitionsDir: "exports/requisicoes",
			Encoding:        textreport.EncodingLatin1,
			MaxRecords:      200,
			MaxFileBytes:    32 << 20, // 32MB
			Timezone:        "Local",
			Watch:           true,
			Debounce:        750 * time.Millisecond,
		},
		Store: StoreConfig{
			Driver: StoreSQLite,
			Path:   "data/confirmations.db",
		},
		Schedule: ScheduleConfig{
			Refresh:    "@every 5m",
			Reclassify: "0 0 * * *",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "deliveryboard",
			Metrics:       true,
			Tracing:       false,
			TraceExporter: "stdout",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}
