// Package config handles application configuration loaded from a YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server" json:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Resolution engine configuration
	Resolver ResolverConfig `yaml:"resolver" json:"resolver"`

	// Provider ranking tables, keyed by media category
	Providers map[string][]ProviderEntry `yaml:"providers" json:"providers"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host         string        `yaml:"host" json:"host" env:"MEDIALOG_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" json:"port" env:"MEDIALOG_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" env:"MEDIALOG_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" env:"MEDIALOG_WRITE_TIMEOUT" default:"30s"`
	EnableCORS   bool          `yaml:"enable_cors" json:"enable_cors" env:"MEDIALOG_ENABLE_CORS" default:"true"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Type         string `yaml:"type" json:"type" env:"DATABASE_TYPE" default:"sqlite"`
	Host         string `yaml:"host" json:"host" env:"POSTGRES_HOST" default:"localhost"`
	Port         int    `yaml:"port" json:"port" env:"POSTGRES_PORT" default:"5432"`
	Username     string `yaml:"username" json:"username" env:"POSTGRES_USER" default:"medialog"`
	Password     string `yaml:"password" json:"-" env:"POSTGRES_PASSWORD"`
	Database     string `yaml:"database" json:"database" env:"POSTGRES_DB" default:"medialog"`
	DatabasePath string `yaml:"database_path" json:"database_path" env:"MEDIALOG_DATABASE_PATH" default:"./data/medialog.db"`
	LogQueries   bool   `yaml:"log_queries" json:"log_queries" env:"DB_LOG_QUERIES" default:"false"`
}

// ResolverConfig holds the tuning knobs for the resolution engine.
// The thresholds are hand-tuned; they are exposed here so deployments
// can override them without a rebuild.
type ResolverConfig struct {
	MinAcceptScore       float64       `yaml:"min_accept_score" json:"min_accept_score" env:"MEDIALOG_MIN_ACCEPT_SCORE" default:"0.3"`
	ConfirmFloor         float64       `yaml:"confirm_floor" json:"confirm_floor" env:"MEDIALOG_CONFIRM_FLOOR" default:"0.9"`
	DuplicateMatchFloor  float64       `yaml:"duplicate_match_floor" json:"duplicate_match_floor" env:"MEDIALOG_DUPLICATE_MATCH_FLOOR" default:"0.9"`
	DuplicateDetectFloor float64       `yaml:"duplicate_detect_floor" json:"duplicate_detect_floor" env:"MEDIALOG_DUPLICATE_DETECT_FLOOR" default:"0.3"`
	SearchTimeout        time.Duration `yaml:"search_timeout" json:"search_timeout" env:"MEDIALOG_SEARCH_TIMEOUT" default:"30s"`
	SaveQueueSize        int           `yaml:"save_queue_size" json:"save_queue_size" env:"MEDIALOG_SAVE_QUEUE_SIZE" default:"64"`

	// ProviderBaseURLs maps a provider name to its search API base URL.
	ProviderBaseURLs map[string]string `yaml:"provider_base_urls" json:"provider_base_urls"`
}

// ProviderEntry is one row of a category's provider ranking table.
// Order in the list is the fallback order; Working is flipped by hand
// when a provider breaks and the config is redeployed.
type ProviderEntry struct {
	Name    string `yaml:"name" json:"name"`
	Working bool   `yaml:"working" json:"working"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"MEDIALOG_LOG_LEVEL" default:"info"`
	Format string `yaml:"format" json:"format" env:"MEDIALOG_LOG_FORMAT" default:"json"`
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading defaults on first use.
func Get() *Config {
	configOnce.Do(func() {
		if globalConfig == nil {
			globalConfig = DefaultConfig()
		}
	})
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

// DefaultConfig returns the default application configuration
func DefaultConfig() *Config {
	cfg := &Config{
		Providers: map[string][]ProviderEntry{
			"anime": {
				{Name: "aniwave", Working: true},
				{Name: "gogostream", Working: true},
				{Name: "zorotv", Working: false},
			},
			"movie-tv": {
				{Name: "vidsrc", Working: true},
				{Name: "embedstream", Working: true},
			},
		},
		Resolver: ResolverConfig{
			ProviderBaseURLs: map[string]string{},
		},
	}
	if err := applyDefaults(reflect.ValueOf(cfg).Elem()); err != nil {
		log.Printf("WARN: failed to apply config defaults: %v", err)
	}
	return cfg
}

// Load reads configuration from the given YAML file (if it exists) and
// applies environment variable overrides on top of the defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			log.Printf("Configuration loaded from file: %s", configPath)
		}
	}

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Database.Type != "sqlite" && cfg.Database.Type != "postgres" {
		return fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
	r := cfg.Resolver
	for name, v := range map[string]float64{
		"min_accept_score":       r.MinAcceptScore,
		"confirm_floor":          r.ConfirmFloor,
		"duplicate_match_floor":  r.DuplicateMatchFloor,
		"duplicate_detect_floor": r.DuplicateDetectFloor,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("resolver threshold %s out of range: %f", name, v)
		}
	}
	for category, entries := range cfg.Providers {
		if len(entries) == 0 {
			return fmt.Errorf("provider table for category %q is empty", category)
		}
		for _, e := range entries {
			if e.Name == "" {
				return fmt.Errorf("provider table for category %q has an unnamed entry", category)
			}
		}
	}
	return nil
}

// applyDefaults walks struct fields and fills zero values from `default` tags.
func applyDefaults(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && fieldType.Type != reflect.TypeOf(time.Duration(0)) {
			if err := applyDefaults(field); err != nil {
				return err
			}
			continue
		}

		def := fieldType.Tag.Get("default")
		if def == "" || !field.IsZero() {
			continue
		}
		if err := setFieldFromString(field, def); err != nil {
			return fmt.Errorf("bad default for %s: %w", fieldType.Name, err)
		}
	}

	return nil
}

// loadStructFromEnv walks struct fields and overrides values from `env` tags.
func loadStructFromEnv(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && fieldType.Type != reflect.TypeOf(time.Duration(0)) {
			if err := loadStructFromEnv(field); err != nil {
				return err
			}
			continue
		}

		envName := fieldType.Tag.Get("env")
		if envName == "" {
			continue
		}
		envValue := os.Getenv(envName)
		if envValue == "" {
			continue
		}
		if err := setFieldFromString(field, envValue); err != nil {
			return fmt.Errorf("bad value for %s: %w", envName, err)
		}
	}

	return nil
}

func setFieldFromString(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// time.Duration is an int64 under the hood
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
	return nil
}
