// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// DuckDBResolver handles duckdb://path DSNs. An empty path or :memory: opens
// an in-memory database. The normalized form is the bare path plus any query
// parameters, which is what the duckdb driver expects.
type DuckDBResolver struct{}

func NewDuckDBResolver() *DuckDBResolver {
	return &DuckDBResolver{}
}

func (r *DuckDBResolver) Parse(dsn string) (*DSNInfo, error) {
	rest, ok := cutPrefixFold(dsn, "duckdb://")
	if !ok {
		return nil, NewParseError(dsn, "missing or invalid scheme", "use duckdb:///path/to/file.db or duckdb://:memory:")
	}
	info := &DSNInfo{Type: DBTypeDuckDB, Params: make(map[string]string), Original: dsn}

	path, query, _ := strings.Cut(rest, "?")
	if path == ":memory:" {
		path = ""
	}
	info.Database = path
	for _, param := range strings.Split(query, "&") {
		if k, v, ok := strings.Cut(param, "="); ok {
			info.Params[k] = v
		}
	}
	return info, nil
}

func (r *DuckDBResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	_, query, _ := strings.Cut(strings.TrimPrefix(info.Original, "duckdb://"), "?")
	if query == "" {
		return info.Database, nil
	}
	return info.Database + "?" + query, nil
}

func (r *DuckDBResolver) Validate(dsn string) error {
	_, err := r.Parse(dsn)
	return err
}
