// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// DetectDBType detects the database type from a DSN string. Besides the URL
// schemes, the go-sql-driver native form (user:pass@tcp(host)/db) is MySQL.
func DetectDBType(dsn string) DBType {
	lower := strings.ToLower(dsn)

	switch {
	case strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://"):
		return DBTypePostgreSQL
	case strings.HasPrefix(lower, "mysql://"):
		return DBTypeMySQL
	case strings.HasPrefix(lower, "duckdb://"):
		return DBTypeDuckDB
	case !strings.Contains(lower, "://") && isNativeMySQL(dsn):
		return DBTypeMySQL
	}
	return DBTypeUnknown
}

func resolverFor(dsn string) (Resolver, error) {
	if dsn == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}
	switch DetectDBType(dsn) {
	case DBTypeMySQL:
		return NewMySQLResolver(), nil
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), nil
	case DBTypeDuckDB:
		return NewDuckDBResolver(), nil
	default:
		return nil, NewParseError(dsn, "unknown database type", "use mysql://, postgres://, or duckdb://")
	}
}

// Parse parses a DSN string and returns the connection string its driver
// expects. This is the main entry point for DSN parsing.
func Parse(dsn string) (string, error) {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return "", err
	}

	info, err := resolver.Parse(dsn)
	if err != nil {
		return "", err
	}
	return resolver.Normalize(info)
}

// Resolve parses dsn and pairs the normalized string with its driver name.
func Resolve(dsn string) (*Target, error) {
	normalized, err := Parse(dsn)
	if err != nil {
		return nil, err
	}
	t := DetectDBType(dsn)
	return &Target{Type: t, Driver: t.Driver(), DSN: normalized}, nil
}

// Validate validates a DSN string without normalizing it
func Validate(dsn string) error {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return err
	}
	return resolver.Validate(dsn)
}

// ParseInfo parses a DSN string and returns detailed DSN info
// Useful for inspecting connection details
func ParseInfo(dsn string) (*DSNInfo, error) {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return nil, err
	}
	return resolver.Parse(dsn)
}
