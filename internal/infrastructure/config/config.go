package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Decrement modes for the inventory decrement loop
const (
	DecrementModeAtomic    = "atomic"
	DecrementModeReadWrite = "read_write"
)

// Cache drivers
const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// Storage drivers for invoice attachments
const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Cache       CacheConfig
	Inventory   InventoryConfig
	JWT         JWTConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Storage     StorageConfig
	Printing    PrintingConfig
	Swagger     SwaggerConfig
	Maintenance MaintenanceConfig
	Telemetry   TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds response cache settings
type CacheConfig struct {
	Enabled     bool
	Driver      string        // memory or redis
	TTL         time.Duration // default entry lifetime
	CheckPeriod time.Duration // expiry sweep interval (memory driver)
	KeyPrefix   string        // redis key prefix
}

// InventoryConfig holds stock bookkeeping settings
type InventoryConfig struct {
	DecrementMode string // atomic or read_write
	MovementLog   bool   // record every stock change in movimientos_stock
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// StorageConfig holds invoice attachment storage settings
type StorageConfig struct {
	Driver        string // local or s3
	LocalPath     string
	PublicURL     string // URL prefix for local files
	MaxUploadSize int64
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	UsePathStyle  bool
}

// PrintingConfig holds PDF generation settings
type PrintingConfig struct {
	OutputDir       string
	ChromeRemoteURL string
	Timeout         time.Duration
	NoSandbox       bool
	CompanyName     string
}

// MaintenanceConfig holds the background maintenance scheduler settings
type MaintenanceConfig struct {
	Enabled       bool
	Interval      time.Duration // how often the maintenance tasks are queued
	Workers       int
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	PDFRetention  time.Duration // generated PDFs older than this are removed, 0 keeps them
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // IPs or CIDRs allowed to read the docs, empty allows all
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable tracing
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	DBTraceEnabled    bool
	ProfilingEnabled  bool
	ProfilingAddress  string // Pyroscope server address
}

// Load loads configuration from a .env file, a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with GC_ prefix (e.g., GC_DATABASE_PASSWORD)
// 2. .env in the working directory (only fills variables not already set)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("GC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults for booleans must be registered with viper, an unset bool is indistinguishable from false
	v.SetDefault("cache.enabled", true)
	v.SetDefault("inventory.movement_log", true)
	v.SetDefault("swagger.enabled", true)
	v.SetDefault("storage.use_path_style", true)
	v.SetDefault("printing.no_sandbox", true)
	v.SetDefault("maintenance.enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			Enabled:     v.GetBool("cache.enabled"),
			Driver:      v.GetString("cache.driver"),
			TTL:         v.GetDuration("cache.ttl"),
			CheckPeriod: v.GetDuration("cache.check_period"),
			KeyPrefix:   v.GetString("cache.key_prefix"),
		},
		Inventory: InventoryConfig{
			DecrementMode: v.GetString("inventory.decrement_mode"),
			MovementLog:   v.GetBool("inventory.movement_log"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Storage: StorageConfig{
			Driver:        v.GetString("storage.driver"),
			LocalPath:     v.GetString("storage.local_path"),
			PublicURL:     v.GetString("storage.public_url"),
			MaxUploadSize: v.GetInt64("storage.max_upload_size"),
			Endpoint:      v.GetString("storage.endpoint"),
			Region:        v.GetString("storage.region"),
			Bucket:        v.GetString("storage.bucket"),
			AccessKey:     v.GetString("storage.access_key"),
			SecretKey:     v.GetString("storage.secret_key"),
			UseSSL:        v.GetBool("storage.use_ssl"),
			UsePathStyle:  v.GetBool("storage.use_path_style"),
		},
		Printing: PrintingConfig{
			OutputDir:       v.GetString("printing.output_dir"),
			ChromeRemoteURL: v.GetString("printing.chrome_remote_url"),
			Timeout:         v.GetDuration("printing.timeout"),
			NoSandbox:       v.GetBool("printing.no_sandbox"),
			CompanyName:     v.GetString("printing.company_name"),
		},
		Maintenance: MaintenanceConfig{
			Enabled:       v.GetBool("maintenance.enabled"),
			Interval:      v.GetDuration("maintenance.interval"),
			Workers:       v.GetInt("maintenance.workers"),
			JobTimeout:    v.GetDuration("maintenance.job_timeout"),
			RetryAttempts: v.GetInt("maintenance.retry_attempts"),
			RetryDelay:    v.GetDuration("maintenance.retry_delay"),
			PDFRetention:  v.GetDuration("maintenance.pdf_retention"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilingAddress:  v.GetString("telemetry.profiling_address"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "gestion-compras"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "5000"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "gestion_compras"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = CacheDriverMemory
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 300 * time.Second
	}
	if cfg.Cache.CheckPeriod == 0 {
		cfg.Cache.CheckPeriod = 60 * time.Second
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "gc:cache:"
	}
	if cfg.Inventory.DecrementMode == "" {
		cfg.Inventory.DecrementMode = DecrementModeAtomic
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "gestion-compras"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// PDF rendering can take a while
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 12 << 20 // room for a 10MB attachment plus form overhead
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 1000
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageDriverLocal
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "uploads/facturas"
	}
	if cfg.Storage.PublicURL == "" && cfg.Storage.Driver == StorageDriverLocal {
		cfg.Storage.PublicURL = "/uploads/facturas"
	}
	if cfg.Storage.MaxUploadSize == 0 {
		cfg.Storage.MaxUploadSize = 10 << 20 // 10MB
	}
	if cfg.Printing.OutputDir == "" {
		cfg.Printing.OutputDir = "uploads/pdfs"
	}
	if cfg.Printing.Timeout == 0 {
		cfg.Printing.Timeout = 30 * time.Second
	}
	if cfg.Maintenance.Interval == 0 {
		cfg.Maintenance.Interval = time.Hour
	}
	if cfg.Maintenance.Workers == 0 {
		cfg.Maintenance.Workers = 2
	}
	if cfg.Maintenance.JobTimeout == 0 {
		cfg.Maintenance.JobTimeout = 5 * time.Minute
	}
	if cfg.Maintenance.RetryDelay == 0 {
		cfg.Maintenance.RetryDelay = time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Cache.Driver {
	case CacheDriverMemory, CacheDriverRedis:
	default:
		return fmt.Errorf("cache.driver must be %q or %q, got %q", CacheDriverMemory, CacheDriverRedis, c.Cache.Driver)
	}
	if c.Cache.TTL < 0 || c.Cache.CheckPeriod < 0 {
		return fmt.Errorf("cache.ttl and cache.check_period cannot be negative")
	}

	switch c.Inventory.DecrementMode {
	case DecrementModeAtomic, DecrementModeReadWrite:
	default:
		return fmt.Errorf("inventory.decrement_mode must be %q or %q, got %q",
			DecrementModeAtomic, DecrementModeReadWrite, c.Inventory.DecrementMode)
	}

	switch c.Storage.Driver {
	case StorageDriverLocal:
	case StorageDriverS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when storage.driver is s3")
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", StorageDriverLocal, StorageDriverS3, c.Storage.Driver)
	}

	if c.Maintenance.Enabled {
		if c.Maintenance.Interval <= 0 {
			return fmt.Errorf("maintenance.interval must be positive, got %s", c.Maintenance.Interval)
		}
		if c.Maintenance.Workers <= 0 || c.Maintenance.JobTimeout <= 0 {
			return fmt.Errorf("maintenance.workers and maintenance.job_timeout must be positive")
		}
		if c.Maintenance.RetryAttempts < 0 || c.Maintenance.RetryDelay < 0 || c.Maintenance.PDFRetention < 0 {
			return fmt.Errorf("maintenance.retry_attempts, maintenance.retry_delay and maintenance.pdf_retention cannot be negative")
		}
	}

	if c.App.Env == "production" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Inventory.DecrementMode == DecrementModeReadWrite {
			return fmt.Errorf("inventory.decrement_mode %q loses updates under concurrency and is not allowed in production", DecrementModeReadWrite)
		}
	} else if c.JWT.Secret == "" {
		c.JWT.Secret = "development-secret-change-me-please-0000"
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns host:port for the Redis server
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
