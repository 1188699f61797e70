package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	JWT       JWTConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	SecureCookies   bool
}

// StorageConfig selects the store behind the repositories: "mongodb" or "memory"
type StorageConfig struct {
	Driver string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	// Transactions: "auto" probes the deployment, "on" and "off" force the mode
	Transactions string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
	Cookie    string
}

// CacheConfig holds the TTL of every cached resource
type CacheConfig struct {
	CategoriesTTL  time.Duration
	UsersTTL       time.Duration
	SettingsTTL    time.Duration
	SuggestionsTTL time.Duration
	ResultsTTL     time.Duration
	SweepInterval  time.Duration
}

// RateLimitConfig limits vote and login requests per client IP
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from a .env file, config files and environment variables
func Load() (*Config, error) {
	// A missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is not configured")
	}
	switch c.Storage.Driver {
	case "mongodb":
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI is not configured")
		}
	case "memory":
	default:
		return errors.New("STORAGE_DRIVER must be mongodb or memory")
	}
	switch c.MongoDB.Transactions {
	case "auto", "on", "off":
	default:
		return errors.New("MONGODB_TRANSACTIONS must be auto, on or off")
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("Server.ShutdownTimeout", 5*time.Second)
	v.SetDefault("Server.SecureCookies", false)
	v.SetDefault("Storage.Driver", "mongodb")
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "malucas-awards")
	v.SetDefault("MongoDB.ConnectTimeout", 10*time.Second)
	v.SetDefault("MongoDB.Transactions", "auto")
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", 7*24*time.Hour)
	v.SetDefault("JWT.Cookie", "auth-token")
	v.SetDefault("Cache.CategoriesTTL", 2*time.Minute)
	v.SetDefault("Cache.UsersTTL", 5*time.Minute)
	v.SetDefault("Cache.SettingsTTL", time.Minute)
	v.SetDefault("Cache.SuggestionsTTL", time.Minute)
	v.SetDefault("Cache.ResultsTTL", 30*time.Second)
	v.SetDefault("Cache.SweepInterval", 5*time.Minute)
	v.SetDefault("RateLimit.RequestsPerSecond", 5.0)
	v.SetDefault("RateLimit.Burst", 10)
	v.SetDefault("LogLevel", "info")
}
