package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	dberrors "dbgate/cli/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DBGATE_DSN", "DATABASE_URL", "DBGATE_LOG_LEVEL", "DBGATE_LISTEN_ADDR", "DBGATE_STATIC_ROOT", "DBGATE_HEALTH_ADDR"} {
		t.Setenv(k, "")
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	c, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if c.ListenAddr != ":8000" || c.StaticRoot != "./static" || !c.StrictColumnTypes {
		t.Errorf("defaults = %+v", c)
	}
	if c.DB.MaxOpenConns != 4 {
		t.Errorf("max_open_conns = %d, want 4", c.DB.MaxOpenConns)
	}
}

func TestLoadFromPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	p := filepath.Join(t.TempDir(), "config.json")
	body := `{"listen_addr": ":9000", "db": {"max_open_conns": 8, "conn_max_lifetime": "90s"}}`
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFrom(p)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if c.ListenAddr != ":9000" {
		t.Errorf("listen_addr = %q", c.ListenAddr)
	}
	if c.DB.MaxOpenConns != 8 {
		t.Errorf("max_open_conns = %d", c.DB.MaxOpenConns)
	}
	if c.ConnMaxLifetime() != 90*time.Second {
		t.Errorf("conn_max_lifetime = %v", c.ConnMaxLifetime())
	}
	if !c.StrictColumnTypes {
		t.Error("strict_column_types should stay true when absent")
	}
	if c.StaticRoot != "./static" {
		t.Errorf("static_root = %q", c.StaticRoot)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DBGATE_LISTEN_ADDR", "127.0.0.1:8080")
	t.Setenv("DBGATE_STATIC_ROOT", "s3://assets/gate")

	c, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	if c.ListenAddr != "127.0.0.1:8080" || c.StaticRoot != "s3://assets/gate" {
		t.Errorf("env overrides not applied: %+v", c)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"listen_addr":`},
		{"zero pool", `{"db": {"max_open_conns": 0}}`},
		{"idle above open", `{"db": {"max_open_conns": 2, "max_idle_conns": 3}}`},
		{"bad duration", `{"db": {"conn_max_lifetime": "soon"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(p, []byte(tt.body), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(p); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveToRoundTripsAndIsPrivate(t *testing.T) {
	clearEnv(t)
	p := filepath.Join(t.TempDir(), "config.json")
	c := Defaults()
	c.HealthAddr = ":9090"
	c.StrictColumnTypes = false

	if err := SaveTo(p, c); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	fi, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", fi.Mode().Perm())
	}

	got, err := LoadFrom(p)
	if err != nil {
		t.Fatal(err)
	}
	if got.HealthAddr != ":9090" || got.StrictColumnTypes {
		t.Errorf("reloaded = %+v", got)
	}
}

func TestResolveDSNOrder(t *testing.T) {
	keychain := func() (string, error) { return "duckdb://:memory:", nil }

	tests := []struct {
		name       string
		env        map[string]string
		configDSN  string
		wantDSN    string
		wantSource Source
	}{
		{
			name:       "DBGATE_DSN wins",
			env:        map[string]string{"DBGATE_DSN": "mysql://a:b@h/d", "DATABASE_URL": "postgres://x:y@h/d"},
			configDSN:  "mysql://c:d@h/d",
			wantDSN:    "mysql://a:b@h/d",
			wantSource: SourceEnv,
		},
		{
			name:       "DATABASE_URL next",
			env:        map[string]string{"DATABASE_URL": "postgres://x:y@h/d"},
			configDSN:  "mysql://c:d@h/d",
			wantDSN:    "postgres://x:y@h/d",
			wantSource: SourceDatabaseURL,
		},
		{
			name:       "config file",
			configDSN:  "mysql://c:d@h/d",
			wantDSN:    "mysql://c:d@h/d",
			wantSource: SourceConfig,
		},
		{
			name:       "keychain last",
			wantDSN:    "duckdb://:memory:",
			wantSource: SourceKeychain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			c := Defaults()
			c.DB.DSN = tt.configDSN

			got, src, err := c.ResolveDSN(keychain)
			if err != nil {
				t.Fatalf("ResolveDSN: %v", err)
			}
			if got != tt.wantDSN || src != tt.wantSource {
				t.Errorf("ResolveDSN = (%q, %q), want (%q, %q)", got, src, tt.wantDSN, tt.wantSource)
			}
		})
	}
}

func TestResolveDSNNothingConfigured(t *testing.T) {
	clearEnv(t)
	_, _, err := Defaults().ResolveDSN(func() (string, error) { return "", errors.New("key not found") })
	if !dberrors.Is(err, dberrors.ConfigInvalid) {
		t.Errorf("err = %v, want config_invalid", err)
	}
}
