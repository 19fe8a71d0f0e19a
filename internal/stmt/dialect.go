// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package stmt

import (
	"fmt"
	"strconv"
	"strings"

	"dbgate/cli/internal/ident"
)

// Dialect holds the engine-specific parts of statement composition.
type Dialect interface {
	// Name is the dialect key used in configuration ("mysql", "postgresql", "duckdb").
	Name() string
	// Quote renders a sanitized identifier for embedding in SQL text.
	Quote(id ident.Identifier) string
	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string
	// ListTables returns the statement listing user tables. Bind markers
	// are taken from m.
	ListTables(m *Marks) (string, []any)
	// Describe returns the statement describing a table's columns. Bind
	// markers are taken from m.
	Describe(table ident.Identifier, m *Marks) (string, []any)
	// CheckColumnType validates CREATE TABLE type text.
	CheckColumnType(typ string) error
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "mysql", "":
		return MySQL{}, nil
	case "postgresql", "postgres", "pgx":
		return Postgres{}, nil
	case "duckdb":
		return DuckDB{}, nil
	}
	return nil, fmt.Errorf("unsupported dialect %q", name)
}

// Marks hands out a dialect's bind markers in order and counts them, so a
// statement's placeholder total comes from the text that was written.
type Marks struct {
	d Dialect
	n int
}

// NewMarks starts numbering markers for d at 1.
func NewMarks(d Dialect) *Marks { return &Marks{d: d} }

// Next returns the next marker.
func (m *Marks) Next() string {
	m.n++
	return m.d.Placeholder(m.n)
}

// List returns n comma-separated markers.
func (m *Marks) List(n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = m.Next()
	}
	return strings.Join(marks, ", ")
}

// Count is the number of markers handed out so far.
func (m *Marks) Count() int { return m.n }

// MySQL quotes with backticks and binds with '?'.
type MySQL struct{}

func (MySQL) Name() string                      { return "mysql" }
func (MySQL) Quote(id ident.Identifier) string  { return "`" + id.String() + "`" }
func (MySQL) Placeholder(int) string            { return "?" }
func (MySQL) ListTables(*Marks) (string, []any) { return "SHOW TABLES;", nil }

func (d MySQL) Describe(table ident.Identifier, _ *Marks) (string, []any) {
	return "DESCRIBE " + d.Quote(table) + ";", nil
}

func (MySQL) CheckColumnType(typ string) error { return checkMySQLColumnType(typ) }

// Postgres quotes with double quotes and binds with $n. It has no SHOW TABLES
// or DESCRIBE, so introspection reads information_schema with the table name
// bound as a parameter.
type Postgres struct{}

func (Postgres) Name() string                     { return "postgresql" }
func (Postgres) Quote(id ident.Identifier) string { return `"` + id.String() + `"` }
func (Postgres) Placeholder(n int) string         { return "$" + strconv.Itoa(n) }

func (Postgres) ListTables(*Marks) (string, []any) {
	return `SELECT table_name FROM information_schema.tables ` +
		`WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ` +
		`ORDER BY table_name;`, nil
}

func (Postgres) Describe(table ident.Identifier, m *Marks) (string, []any) {
	return `SELECT column_name, data_type, is_nullable, column_default ` +
		`FROM information_schema.columns ` +
		`WHERE table_schema = current_schema() AND table_name = ` + m.Next() + ` ` +
		`ORDER BY ordinal_position;`, []any{table.String()}
}

func (Postgres) CheckColumnType(typ string) error { return checkGenericColumnType(typ) }

// DuckDB quotes with double quotes, binds with '?' and understands SHOW
// TABLES / DESCRIBE natively.
type DuckDB struct{}

func (DuckDB) Name() string                      { return "duckdb" }
func (DuckDB) Quote(id ident.Identifier) string  { return `"` + id.String() + `"` }
func (DuckDB) Placeholder(int) string            { return "?" }
func (DuckDB) ListTables(*Marks) (string, []any) { return "SHOW TABLES;", nil }

func (d DuckDB) Describe(table ident.Identifier, _ *Marks) (string, []any) {
	return "DESCRIBE " + d.Quote(table) + ";", nil
}

func (DuckDB) CheckColumnType(typ string) error { return checkGenericColumnType(typ) }
