// Package config loads the service configuration from environment
// variables with sane defaults, via viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	KeyID     string `mapstructure:"key_id"`
	AccessKey string `mapstructure:"access_key"`
	Timeout   string `mapstructure:"timeout"`
	Prefix    string `mapstructure:"prefix"`
}

type StorageConfig struct {
	// Type selects the payload backend: memory, filesystem or s3.
	Type string   `mapstructure:"type"`
	Dir  string   `mapstructure:"dir"`
	S3   S3Config `mapstructure:"s3"`
}

type AppConfig struct {
	Port                int    `mapstructure:"port"                  validate:"required,numeric,min=1,max=65535"`
	LogLevel            string `mapstructure:"log_level"`
	HumanReadableOutput bool   `mapstructure:"human_readable_output"`

	MaxListLimit  int    `mapstructure:"max_list_limit"`
	MaxTagLimit   int    `mapstructure:"max_tag_limit"`
	FetchTimeout  string `mapstructure:"fetch_timeout"`
	MaxFetchBytes int64  `mapstructure:"max_fetch_bytes"`

	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// Load populates the AppConfig from ASSET_CATALOG_* environment variables
// on top of the defaults.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("ASSET_CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"port":                  8188,
		"log_level":             "info",
		"human_readable_output": true,

		"max_list_limit":  100,
		"max_tag_limit":   500,
		"fetch_timeout":   "30s",
		"max_fetch_bytes": int64(1 << 30),

		"database.enabled":  false,
		"database.host":     "localhost",
		"database.port":     5432,
		"database.username": "catalog_user",
		"database.password": "catalog_password",
		"database.database": "catalog_db",
		"database.sslmode":  "disable",

		"storage.type":       "filesystem",
		"storage.dir":        "./data/blobs",
		"storage.s3.timeout": "30s",
		"storage.s3.prefix":  "assets",
	}
}
