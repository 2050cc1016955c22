package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the backend.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Gym       GymConfig       `mapstructure:"gym"`
	Messaging MessagingConfig `mapstructure:"messaging"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Release bool   `mapstructure:"release"` // gin release mode
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "mongo" or "memory"
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Namespace string `mapstructure:"namespace"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// GymConfig describes the gym itself.
type GymConfig struct {
	Name     string `mapstructure:"name"`
	Timezone string `mapstructure:"timezone"` // IANA name; decides what "today" is
}

// Location resolves Timezone, falling back to UTC when it is empty.
func (g GymConfig) Location() (*time.Location, error) {
	if g.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid gym.timezone %q: %w", g.Timezone, err)
	}
	return loc, nil
}

// MessagingConfig configures WhatsApp reminders.
type MessagingConfig struct {
	CountryCode      string `mapstructure:"country_code"`
	ExpiredTemplate  string `mapstructure:"expired_template"`
	ExpiringTemplate string `mapstructure:"expiring_template"`
	ActiveTemplate   string `mapstructure:"active_template"`
}

type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// LoadConfig reads config.yaml from path (if present) and the environment.
// Nested keys map to env vars with underscores: server.address -> SERVER_ADDRESS.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.release", false)
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "gym_membership")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.namespace", "default")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "gym-member-photos")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("gym.name", "")
	v.SetDefault("gym.timezone", "UTC")
	v.SetDefault("messaging.country_code", "91")
	v.SetDefault("messaging.expired_template", "")
	v.SetDefault("messaging.expiring_template", "")
	v.SetDefault("messaging.active_template", "")
	v.SetDefault("log.level", "info")

	err = v.ReadInConfig()
	// A missing config file is fine, env vars and defaults still apply.
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return config, fmt.Errorf("failed to read config: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to decode config: %w", err)
	}
	if _, err = config.Gym.Location(); err != nil {
		return config, err
	}
	switch config.Database.Driver {
	case DriverMongo, DriverMemory:
	default:
		return config, fmt.Errorf("unknown database.driver %q", config.Database.Driver)
	}
	return config, nil
}

// ClientConfig configures the gymctl command-line client.
type ClientConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	SessionFile string        `mapstructure:"session_file"`
	Timezone    string        `mapstructure:"timezone"`
	CountryCode string        `mapstructure:"country_code"`
	Timeout     time.Duration `mapstructure:"timeout"`
	// RedisAddr, when set, keeps the session in Redis instead of SessionFile.
	RedisAddr string `mapstructure:"redis_addr"`
}

// LoadClientConfig reads gymctl.yaml from path (if present) and GYMCTL_*
// environment variables. defaultSessionFile is used when none is configured.
func LoadClientConfig(path, defaultSessionFile string) (ClientConfig, error) {
	var cfg ClientConfig
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("gymctl")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("gymctl")
	v.AutomaticEnv()

	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("session_file", defaultSessionFile)
	v.SetDefault("timezone", "Local")
	v.SetDefault("country_code", "91")
	v.SetDefault("timeout", "15s")
	v.SetDefault("redis_addr", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read gymctl config: %w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode gymctl config: %w", err)
	}
	return cfg, nil
}
