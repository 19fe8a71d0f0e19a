// Package config loads and stores dbgate configuration in the XDG config dir.
// Only non-secret settings belong here; the DSN password and the S3 secret
// key are expected in the OS keychain, although both may be given in the file
// for unattended servers.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	dberrors "dbgate/cli/internal/errors"
	"dbgate/cli/internal/xdg"
)

// Config holds dbgate settings.
type Config struct {
	LogLevel   string `json:"log_level"`
	ListenAddr string `json:"listen_addr"`
	// StaticRoot is a local directory or an s3://bucket/prefix URL.
	StaticRoot string `json:"static_root"`
	// HealthAddr enables the gRPC health server when non-empty.
	HealthAddr string   `json:"health_addr,omitempty"`
	DB         DBConfig `json:"db"`
	// StrictColumnTypes enables the column-type guard for create requests.
	StrictColumnTypes bool     `json:"strict_column_types"`
	S3                S3Config `json:"s3"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	DSN             string   `json:"dsn,omitempty"`
	MaxOpenConns    int      `json:"max_open_conns"`
	MaxIdleConns    int      `json:"max_idle_conns"`
	ConnMaxLifetime Duration `json:"conn_max_lifetime"`
}

// S3Config is used when StaticRoot points at a bucket. Empty credentials
// fall back to the AWS default chain.
type S3Config struct {
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
}

// Duration marshals as a Go duration string ("5m", "30s").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"5m\": %w", err)
	}
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		LogLevel:   "info",
		ListenAddr: ":8000",
		StaticRoot: "./static",
		DB: DBConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: Duration(5 * time.Minute),
		},
		StrictColumnTypes: true,
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file and applies environment overrides. A missing
// file yields Defaults.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(p)
}

// LoadFrom reads configuration from p. Fields absent from the file keep
// their default values.
func LoadFrom(p string) (Config, error) {
	c := Defaults()
	data, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, err
	}
	if err == nil {
		if err := json.Unmarshal(data, &c); err != nil {
			return c, dberrors.Wrap(dberrors.ConfigInvalid, fmt.Sprintf("cannot parse %s", p), err)
		}
	}
	c.applyEnv()
	return c, c.Validate()
}

// applyEnv lets DBGATE_* variables override file settings.
func (c *Config) applyEnv() {
	if v := os.Getenv("DBGATE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DBGATE_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("DBGATE_STATIC_ROOT"); v != "" {
		c.StaticRoot = v
	}
	if v := os.Getenv("DBGATE_HEALTH_ADDR"); v != "" {
		c.HealthAddr = v
	}
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if c.DB.MaxOpenConns < 1 {
		return dberrors.New(dberrors.ConfigInvalid, "db.max_open_conns must be at least 1")
	}
	if c.DB.MaxIdleConns < 0 || c.DB.MaxIdleConns > c.DB.MaxOpenConns {
		return dberrors.New(dberrors.ConfigInvalid, "db.max_idle_conns must be between 0 and db.max_open_conns")
	}
	if c.ConnMaxLifetime() < 0 {
		return dberrors.New(dberrors.ConfigInvalid, "db.conn_max_lifetime must not be negative")
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		return dberrors.New(dberrors.ConfigInvalid, "listen_addr is required")
	}
	return nil
}

func (c Config) ConnMaxLifetime() time.Duration { return time.Duration(c.DB.ConnMaxLifetime) }

// Save writes configuration to Path with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(p, c)
}

func SaveTo(p string, c Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
