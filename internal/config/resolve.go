package config

import (
	"os"
	"strings"

	dberrors "dbgate/cli/internal/errors"
)

// Source names where a DSN was found.
type Source string

const (
	SourceEnv         Source = "DBGATE_DSN"
	SourceDatabaseURL Source = "DATABASE_URL"
	SourceConfig      Source = "config"
	SourceKeychain    Source = "keychain"
)

// SecretLoader reads a secret that may live in the OS keychain.
type SecretLoader func() (string, error)

// ResolveDSN picks the DSN in order: DBGATE_DSN, DATABASE_URL, the config
// file, then the keychain. A keychain error is reported only when every
// other source is empty.
func (c Config) ResolveDSN(keychain SecretLoader) (string, Source, error) {
	if v := strings.TrimSpace(os.Getenv("DBGATE_DSN")); v != "" {
		return v, SourceEnv, nil
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v, SourceDatabaseURL, nil
	}
	if v := strings.TrimSpace(c.DB.DSN); v != "" {
		return v, SourceConfig, nil
	}
	if keychain != nil {
		v, err := keychain()
		if err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), SourceKeychain, nil
		}
		if err != nil {
			return "", "", dberrors.Wrap(dberrors.ConfigInvalid,
				"no database configured; run 'dbgate connect' or set DBGATE_DSN", err)
		}
	}
	return "", "", dberrors.New(dberrors.ConfigInvalid, "no database configured; run 'dbgate connect' or set DBGATE_DSN")
}

// S3SecretKey returns the configured S3 secret key, falling back to the
// keychain when the file leaves it empty.
func (c Config) S3SecretKey(keychain SecretLoader) string {
	if c.S3.SecretKey != "" {
		return c.S3.SecretKey
	}
	if keychain == nil {
		return ""
	}
	v, err := keychain()
	if err != nil {
		return ""
	}
	return v
}
