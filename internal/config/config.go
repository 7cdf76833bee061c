// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret             string `mapstructure:"JWT_SECRET"`
	AccessTokenTTLMinutes int    `mapstructure:"ACCESS_TOKEN_TTL_MINUTES"`
	RefreshTokenTTLHours  int    `mapstructure:"REFRESH_TOKEN_TTL_HOURS"`
	Port                  string `mapstructure:"PORT"`
	DBHost                string `mapstructure:"DB_HOST"`
	DBPort                string `mapstructure:"DB_PORT"`
	DBUser                string `mapstructure:"DB_USER"`
	DBPassword            string `mapstructure:"DB_PASSWORD"`
	DBName                string `mapstructure:"DB_NAME"`
	DBSSLMode             string `mapstructure:"DB_SSLMODE"`
	RedisURL              string `mapstructure:"REDIS_URL"`
	AllowedOrigins        string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags          string `mapstructure:"FEATURE_FLAGS"`
	Env                   string `mapstructure:"APP_ENV"`
	MediaDir              string `mapstructure:"MEDIA_DIR"`
	DefaultAvatarPath     string `mapstructure:"DEFAULT_AVATAR_PATH"`
	AvatarMaxFetchSizeMB  int    `mapstructure:"AVATAR_MAX_FETCH_SIZE_MB"`
	AvatarFetchTimeoutSec int    `mapstructure:"AVATAR_FETCH_TIMEOUT_SEC"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8000")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "parenthelper")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 60)
	viper.SetDefault("REFRESH_TOKEN_TTL_HOURS", 24*7)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("FEATURE_FLAGS", "follower_graph=on")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("MEDIA_DIR", "media")
	viper.SetDefault("DEFAULT_AVATAR_PATH", "media/avatars/default_avatar.jpg")
	viper.SetDefault("AVATAR_MAX_FETCH_SIZE_MB", 5)
	viper.SetDefault("AVATAR_FETCH_TIMEOUT_SEC", 10)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.AccessTokenTTLMinutes <= 0 {
		return errors.New("ACCESS_TOKEN_TTL_MINUTES must be positive")
	}
	if c.RefreshTokenTTLHours <= 0 {
		return errors.New("REFRESH_TOKEN_TTL_HOURS must be positive")
	}
	if c.AvatarMaxFetchSizeMB <= 0 {
		return errors.New("AVATAR_MAX_FETCH_SIZE_MB must be positive")
	}
	if c.AvatarFetchTimeoutSec <= 0 {
		return errors.New("AVATAR_FETCH_TIMEOUT_SEC must be positive")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	if isProduction {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable SSL for database connections in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else {
		if len(c.JWTSecret) < 32 {
			log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
		}
	}

	return nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLHours) * time.Hour
}

// AvatarFetchTimeout returns the timeout applied to avatar downloads.
func (c *Config) AvatarFetchTimeout() time.Duration {
	return time.Duration(c.AvatarFetchTimeoutSec) * time.Second
}

// AvatarMaxFetchBytes returns the avatar download size cap in bytes.
func (c *Config) AvatarMaxFetchBytes() int64 {
	return int64(c.AvatarMaxFetchSizeMB) << 20
}
