package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// CacheConfig holds view cache configuration
type CacheConfig struct {
	Dir     string        `mapstructure:"dir"`      // badger directory; empty disables the persistent tier
	ViewTTL time.Duration `mapstructure:"view_ttl"` // per-view memoization TTL
}

// StorageConfig holds original-file retention configuration
type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir"` // empty disables retention
}

// FilterConfig holds filter pipeline tuning
type FilterConfig struct {
	ChunkSize     int           `mapstructure:"chunk_size"`
	SyncThreshold int           `mapstructure:"sync_threshold"`
	Debounce      time.Duration `mapstructure:"debounce"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/dealer-insights.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Cache defaults
	viper.SetDefault("cache.dir", "data/cache")
	viper.SetDefault("cache.view_ttl", time.Hour)

	// Storage defaults
	viper.SetDefault("storage.upload_dir", "data/uploads")

	// Filter defaults
	viper.SetDefault("filter.chunk_size", 500)
	viper.SetDefault("filter.sync_threshold", 1000)
	viper.SetDefault("filter.debounce", 300*time.Millisecond)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("cache.dir", "CACHE_DIR")
	viper.BindEnv("storage.upload_dir", "UPLOAD_DIR")
	viper.BindEnv("logger.level", "LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Cache.ViewTTL <= 0 {
		return fmt.Errorf("cache.view_ttl must be positive")
	}
	if c.Filter.ChunkSize <= 0 {
		return fmt.Errorf("filter.chunk_size must be positive")
	}
	if c.Filter.SyncThreshold < 0 {
		return fmt.Errorf("filter.sync_threshold must not be negative")
	}
	return nil
}
