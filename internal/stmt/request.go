// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package stmt turns structured operation requests into parameterized SQL.
//
// Names (tables, columns, routines) go through ident.Sanitize and are quoted by
// the active Dialect. Values (cell contents, predicate comparands, routine
// arguments) are never written into SQL text; they are returned as positional
// bind arguments next to the statement.
package stmt

// Op identifies one gateway operation.
type Op string

const (
	ListTables    Op = "list_tables"
	DescribeTable Op = "describe_table"
	SelectAll     Op = "select_all"
	CreateTable   Op = "create_table"
	DropTable     Op = "drop_table"
	TruncateTable Op = "truncate_table"
	UpdateRow     Op = "update_row"
	DeleteRow     Op = "delete_row"
	CallProcedure Op = "call_procedure"
	CallFunction  Op = "call_function"
)

// Mutates reports whether the operation changes database state and therefore
// must be committed before success is reported.
func (o Op) Mutates() bool {
	switch o {
	case CreateTable, DropTable, TruncateTable, UpdateRow, DeleteRow, CallProcedure:
		return true
	}
	return false
}

// ReturnsRows reports whether the operation's outcome is row data rather than
// a status acknowledgement.
func (o Op) ReturnsRows() bool {
	switch o {
	case ListTables, DescribeTable, SelectAll, CallProcedure, CallFunction:
		return true
	}
	return false
}

// ColumnDef is one column of a CREATE TABLE request, in declaration order.
type ColumnDef struct {
	Name string
	Type string
}

// Request is a single operation with its operation-specific fields. Only the
// fields relevant to Op are read; use the constructors below to build one.
type Request struct {
	Op Op

	// Table is the target table for table-scoped operations.
	Table string
	// Column and Value are the SET clause of UpdateRow.
	Column string
	Value  any
	// PrimaryColumn and PrimaryValue form the WHERE clause of UpdateRow/DeleteRow.
	PrimaryColumn string
	PrimaryValue  any
	// Routine is the procedure or function name.
	Routine string
	// Columns is the CreateTable column list.
	Columns []ColumnDef
	// Args are the positional routine arguments.
	Args []any
}

func NewListTables() Request { return Request{Op: ListTables} }

func NewDescribeTable(table string) Request { return Request{Op: DescribeTable, Table: table} }

func NewSelectAll(table string) Request { return Request{Op: SelectAll, Table: table} }

func NewCreateTable(table string, cols []ColumnDef) Request {
	return Request{Op: CreateTable, Table: table, Columns: cols}
}

func NewDropTable(table string) Request { return Request{Op: DropTable, Table: table} }

func NewTruncateTable(table string) Request { return Request{Op: TruncateTable, Table: table} }

// NewUpdateRow builds UPDATE table SET column = value WHERE pcol = pval.
func NewUpdateRow(table, column string, value any, pcol string, pval any) Request {
	return Request{Op: UpdateRow, Table: table, Column: column, Value: value, PrimaryColumn: pcol, PrimaryValue: pval}
}

// NewDeleteRow builds DELETE FROM table WHERE pcol = pval.
func NewDeleteRow(table, pcol string, pval any) Request {
	return Request{Op: DeleteRow, Table: table, PrimaryColumn: pcol, PrimaryValue: pval}
}

func NewCallProcedure(name string, args []any) Request {
	return Request{Op: CallProcedure, Routine: name, Args: args}
}

func NewCallFunction(name string, args []any) Request {
	return Request{Op: CallFunction, Routine: name, Args: args}
}

// Statement is the builder output: SQL text plus the values bound to its
// placeholders, in order.
type Statement struct {
	Op   Op
	SQL  string
	Args []any
	// Placeholders is the number of bind markers written into SQL.
	Placeholders int
	// Entity is the table or routine the statement targets, reported back in
	// status acknowledgements.
	Entity string
}
