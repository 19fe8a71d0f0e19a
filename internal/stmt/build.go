// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package stmt

import (
	"fmt"
	"strings"

	dberrors "dbgate/cli/internal/errors"
	"dbgate/cli/internal/ident"
)

// Builder composes statements for one dialect.
type Builder struct {
	Dialect Dialect
	// StrictTypes enables the dialect's column-type guard for CreateTable.
	// When false, type text is trusted and embedded as given.
	StrictTypes bool
}

// NewBuilder returns a Builder with the column-type guard enabled.
func NewBuilder(d Dialect) *Builder {
	return &Builder{Dialect: d, StrictTypes: true}
}

func missing(field string) error {
	return dberrors.New(dberrors.MissingField, field)
}

// required sanitizes a mandatory name field, reporting MissingField when empty.
func required(field, raw string) (ident.Identifier, error) {
	if raw == "" {
		return ident.Identifier{}, missing(field)
	}
	return ident.Sanitize(raw)
}

// present reports the first empty value among field/value pairs as
// MissingField.
func present(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return missing(pairs[i])
		}
	}
	return nil
}

// Build validates req and composes its SQL. MissingField, InvalidIdentifier
// and InvalidColumnType are returned before any text is produced.
func (b *Builder) Build(req Request) (Statement, error) {
	d := b.Dialect
	m := NewMarks(d)
	st := Statement{Op: req.Op}

	switch req.Op {
	case ListTables:
		st.SQL, st.Args = d.ListTables(m)

	case DescribeTable:
		table, err := required("table", req.Table)
		if err != nil {
			return Statement{}, err
		}
		st.SQL, st.Args = d.Describe(table, m)
		st.Entity = table.String()

	case SelectAll:
		table, err := required("table", req.Table)
		if err != nil {
			return Statement{}, err
		}
		st.SQL = "SELECT * FROM " + d.Quote(table) + ";"
		st.Entity = table.String()

	case CreateTable:
		return b.buildCreate(req)

	case DropTable, TruncateTable:
		table, err := required("table", req.Table)
		if err != nil {
			return Statement{}, err
		}
		verb := "DROP TABLE "
		if req.Op == TruncateTable {
			verb = "TRUNCATE TABLE "
		}
		st.SQL = verb + d.Quote(table) + ";"
		st.Entity = table.String()

	case UpdateRow:
		if err := present("table", req.Table, "column", req.Column, "pcol", req.PrimaryColumn); err != nil {
			return Statement{}, err
		}
		if req.Value == nil {
			return Statement{}, missing("value")
		}
		if req.PrimaryValue == nil {
			return Statement{}, missing("pval")
		}
		ids, err := ident.SanitizeAll(req.Table, req.Column, req.PrimaryColumn)
		if err != nil {
			return Statement{}, err
		}
		table, col, pcol := ids[0], ids[1], ids[2]
		set := d.Quote(col) + " = " + m.Next()
		where := d.Quote(pcol) + " = " + m.Next()
		st.SQL = "UPDATE " + d.Quote(table) + " SET " + set + " WHERE " + where + ";"
		st.Args = []any{req.Value, req.PrimaryValue}
		st.Entity = table.String()

	case DeleteRow:
		if err := present("table", req.Table, "pcol", req.PrimaryColumn); err != nil {
			return Statement{}, err
		}
		if req.PrimaryValue == nil {
			return Statement{}, missing("pval")
		}
		ids, err := ident.SanitizeAll(req.Table, req.PrimaryColumn)
		if err != nil {
			return Statement{}, err
		}
		table, pcol := ids[0], ids[1]
		st.SQL = "DELETE FROM " + d.Quote(table) + " WHERE " + d.Quote(pcol) + " = " + m.Next() + ";"
		st.Args = []any{req.PrimaryValue}
		st.Entity = table.String()

	case CallProcedure, CallFunction:
		routine, err := required("name", req.Routine)
		if err != nil {
			return Statement{}, err
		}
		verb := "CALL "
		if req.Op == CallFunction {
			verb = "SELECT "
		}
		st.SQL = verb + d.Quote(routine) + "(" + m.List(len(req.Args)) + ");"
		st.Args = append([]any(nil), req.Args...)
		st.Entity = routine.String()

	default:
		return Statement{}, dberrors.New(dberrors.MissingField, fmt.Sprintf("unknown operation %q", req.Op))
	}

	st.Placeholders = m.Count()
	return st, nil
}

func (b *Builder) buildCreate(req Request) (Statement, error) {
	d := b.Dialect
	table, err := required("name", req.Table)
	if err != nil {
		return Statement{}, err
	}
	if len(req.Columns) == 0 {
		return Statement{}, missing("no columns provided")
	}

	clauses := make([]string, 0, len(req.Columns))
	for i, c := range req.Columns {
		name, err := required(fmt.Sprintf("col%d", i+1), c.Name)
		if err != nil {
			return Statement{}, err
		}
		typ := strings.TrimSpace(c.Type)
		if typ == "" {
			return Statement{}, missing(fmt.Sprintf("type%d", i+1))
		}
		if b.StrictTypes {
			if err := d.CheckColumnType(typ); err != nil {
				return Statement{}, err
			}
		}
		clauses = append(clauses, d.Quote(name)+" "+typ)
	}

	return Statement{
		Op:     CreateTable,
		SQL:    "CREATE TABLE " + d.Quote(table) + " (" + strings.Join(clauses, ", ") + ");",
		Entity: table.String(),
	}, nil
}
