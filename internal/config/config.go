package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// DSN is the PostgreSQL connection string. Required: the service refuses
	// to start without it.
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// PresaleConfig holds the static presale parameters
type PresaleConfig struct {
	// TotalSupply is the total token supply offered in the presale
	TotalSupply float64 `mapstructure:"total_supply"`
	// ReferralPool is the token pool reserved for referral bonuses
	ReferralPool float64 `mapstructure:"referral_pool"`
	// MinUSD and MaxUSD bound the accepted per-purchase USD value
	MinUSD float64 `mapstructure:"min_usd"`
	MaxUSD float64 `mapstructure:"max_usd"`
	// RefBonusPercent is the referral bonus percentage
	RefBonusPercent float64 `mapstructure:"ref_bonus_percent"`
}

// RPCConfig holds the upstream TON RPC gateway configuration
type RPCConfig struct {
	// BaseURL is the upstream JSON-RPC endpoint
	BaseURL string `mapstructure:"base_url"`
	// APIKey is attached server-side and never exposed to browsers
	APIKey string `mapstructure:"api_key"`
	// Timeout bounds each upstream call
	Timeout time.Duration `mapstructure:"timeout"`
}

// CORSConfig holds the browser origin allow-list
type CORSConfig struct {
	// AllowedOrigins is a comma-separated list of origins allowed to call the API
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"database"`
	Presale    PresaleConfig  `mapstructure:"presale"`
	RPC        RPCConfig      `mapstructure:"rpc"`
	CORS       CORSConfig     `mapstructure:"cors"`
}

// Origins splits the configured allow-list into individual origins
func (c *CORSConfig) Origins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// LoadAPIConfig loads configuration for the API server from an optional
// config.yaml plus PRESALE_* environment variables.
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("presale.total_supply", 500_000_000)
	v.SetDefault("presale.referral_pool", 5_000_000)
	v.SetDefault("presale.min_usd", 1)
	v.SetDefault("presale.max_usd", 10000)
	v.SetDefault("presale.ref_bonus_percent", 5)
	v.SetDefault("rpc.base_url", "https://toncenter.com/api/v2/jsonRPC")
	v.SetDefault("rpc.timeout", "12s")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if cfg.Database.DSN == "" {
		return nil, errors.New("database.dsn is required")
	}

	return &cfg, nil
}

// configureViper returns a viper instance with the config file and environment
// variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("PRESALE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables.
// This is required for viper to map env vars to config struct fields when no
// config file exists.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.dsn",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Presale
		"presale.total_supply",
		"presale.referral_pool",
		"presale.min_usd",
		"presale.max_usd",
		"presale.ref_bonus_percent",
		// RPC
		"rpc.base_url",
		"rpc.api_key",
		"rpc.timeout",
		// CORS
		"cors.allowed_origins",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}
