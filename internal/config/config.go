package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Logging   LoggingConfig
	Matching  MatchingConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Migrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiryMin int
}

type LoggingConfig struct {
	Level string
}

type MatchingConfig struct {
	GenerationLockTTL time.Duration
	TransferLockTTL   time.Duration
	// DefaultMeetingDuration applies when a generation request omits one.
	DefaultMeetingDuration time.Duration
}

type MetricsConfig struct {
	Enabled bool
}

type RateLimitConfig struct {
	TransferPerSecond float64
	TransferBurst     int
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ENV", "dev")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("JWT_ACCESS_EXPIRY_MIN", 60*24*7)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MATCH_GENERATION_LOCK_TTL_SEC", 120)
	v.SetDefault("MATCH_TRANSFER_LOCK_TTL_SEC", 10)
	v.SetDefault("MATCH_DEFAULT_MEETING_MIN", 15)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("TRANSFER_RATE_PER_SEC", 2)
	v.SetDefault("TRANSFER_RATE_BURST", 5)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
			Migrate:  v.GetBool("DB_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			AccessSecret:    v.GetString("JWT_ACCESS_SECRET"),
			AccessExpiryMin: v.GetInt("JWT_ACCESS_EXPIRY_MIN"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Matching: MatchingConfig{
			GenerationLockTTL:      time.Duration(v.GetInt("MATCH_GENERATION_LOCK_TTL_SEC")) * time.Second,
			TransferLockTTL:        time.Duration(v.GetInt("MATCH_TRANSFER_LOCK_TTL_SEC")) * time.Second,
			DefaultMeetingDuration: time.Duration(v.GetInt("MATCH_DEFAULT_MEETING_MIN")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			TransferPerSecond: v.GetFloat64("TRANSFER_RATE_PER_SEC"),
			TransferBurst:     v.GetInt("TRANSFER_RATE_BURST"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT access secret is required")
	}
	if len(c.JWT.AccessSecret) < 32 {
		return fmt.Errorf("JWT access secret must be at least 32 characters")
	}
	if c.Matching.GenerationLockTTL <= 0 || c.Matching.TransferLockTTL <= 0 {
		return fmt.Errorf("match lock TTLs must be positive")
	}
	if c.Matching.DefaultMeetingDuration < 0 {
		return fmt.Errorf("default meeting duration must not be negative")
	}
	if c.RateLimit.TransferPerSecond <= 0 || c.RateLimit.TransferBurst <= 0 {
		return fmt.Errorf("transfer rate limit must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs outside local development.
func (c *ServerConfig) IsProduction() bool {
	return c.Env != "dev" && c.Env != "test"
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
