// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	dberrors "dbgate/cli/internal/errors"
	"dbgate/cli/internal/stmt"
)

func newMock(t *testing.T) (*Executor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, nil), mock
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestRunSelectAll(t *testing.T) {
	ex, mock := newMock(t)
	mock.ExpectQuery("SELECT * FROM `users`;").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "ann").AddRow(int64(2), "bob"))

	out := ex.Run(context.Background(), stmt.NewBuilder(stmt.MySQL{}), stmt.NewSelectAll("users"))

	if out.Kind != OutcomeRows {
		t.Fatalf("kind = %v, err = %v", out.Kind, out.Err)
	}
	if got, want := mustJSON(t, out), `[[1,"ann"],[2,"bob"]]`; got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRunEmptyTableReturnsEmptyArray(t *testing.T) {
	ex, mock := newMock(t)
	mock.ExpectQuery("SELECT * FROM `empty`;").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	out := ex.Run(context.Background(), stmt.NewBuilder(stmt.MySQL{}), stmt.NewSelectAll("empty"))

	if got := mustJSON(t, out); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestRunListTablesReturnsFirstSetOnly(t *testing.T) {
	ex, mock := newMock(t)
	first := sqlmock.NewRows([]string{"Tables_in_dbms"}).AddRow("orders").AddRow("users")
	second := sqlmock.NewRows([]string{"extra"}).AddRow("ignored")
	mock.ExpectQuery("SHOW TABLES;").WillReturnRows(first, second)

	out := ex.Run(context.Background(), stmt.NewBuilder(stmt.MySQL{}), stmt.NewListTables())

	if got, want := mustJSON(t, out), `[["orders"],["users"]]`; got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if out.Drained != 2 {
		t.Errorf("drained = %d, want 2", out.Drained)
	}
}

func TestRunCallProcedureDrainsAllSets(t *testing.T) {
	ex, mock := newMock(t)
	rs1 := sqlmock.NewRows([]string{"a"}).AddRow(int64(1))
	rs2 := sqlmock.NewRows([]string{"b"}).AddRow(int64(2))
	rs3 := sqlmock.NewRows([]string{"c"}).AddRow(int64(3))

	mock.ExpectBegin()
	mock.ExpectQuery("CALL `p`(?, ?);").WithArgs("x", "y").WillReturnRows(rs1, rs2, rs3)
	mock.ExpectCommit()

	out := ex.Run(context.Background(), stmt.NewBuilder(stmt.MySQL{}), stmt.NewCallProcedure("p", []any{"x", "y"}))

	if out.Kind != OutcomeRows {
		t.Fatalf("kind = %v, err = %v", out.Kind, out.Err)
	}
	if got, want := mustJSON(t, out), `[[1]]`; got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if out.Drained != 3 {
		t.Errorf("drained = %d, want 3", out.Drained)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRunCallProcedureThenFollowUpRead(t *testing.T) {
	ex, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("CALL `seed`();").WillReturnRows(
		sqlmock.NewRows([]string{"n"}).AddRow(int64(10)),
		sqlmock.NewRows([]string{"m"}).AddRow(int64(20)),
	)
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT * FROM `t`;").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	b := stmt.NewBuilder(stmt.MySQL{})
	if out := ex.Run(context.Background(), b, stmt.NewCallProcedure("seed", nil)); out.Kind != OutcomeRows {
		t.Fatalf("call: kind = %v, err = %v", out.Kind, out.Err)
	}
	out := ex.Run(context.Background(), b, stmt.NewSelectAll("t"))
	if got, want := mustJSON(t, out), `[[7]]`; got != want {
		t.Errorf("follow-up body = %s, want %s", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRunCallFunctionHasNoTransaction(t *testing.T) {
	ex, mock := newMock(t)
	mock.ExpectQuery("SELECT `f`(?);").WithArgs("3").WillReturnRows(sqlmock.NewRows([]string{"f(3)"}).AddRow(int64(9)))

	out := ex.Run(context.Background(), stmt.NewBuilder(stmt.MySQL{}), stmt.NewCallFunction("f", []any{"3"}))

	if got, want := mustJSON(t, out), `[[9]]`; got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRunMutationsCommit(t *testing.T) {
	tests := []struct {
		name string
		req  stmt.Request
		sql  string
		args []driver.Value
		want string
	}{
		{
			name: "create",
			req:  stmt.NewCreateTable("t", []stmt.ColumnDef{{Name: "id", Type: "INT"}, {Name: "name", Type: "VARCHAR(10)"}}),
			sql:  "CREATE TABLE `t` (`id` INT, `name` VARCHAR(10));",
			want: `{"status":"success","table":"t"}`,
		},
		{
			name: "drop",
			req:  stmt.NewDropTable("t"),
			sql:  "DROP TABLE `t`;",
			want: `{"status":"success","table":"t"}`,
		},
		{
			name: "update",
			req:  stmt.NewUpdateRow("users", "name", "bob", "id", "1"),
			sql:  "UPDATE `users` SET `name` = ? WHERE `id` = ?;",
			args: []driver.Value{"bob", "1"},
			want: `{"status":"success","table":"users"}`,
		},
		{
			name: "delete",
			req:  stmt.NewDeleteRow("users", "id", "1"),
			sql:  "DELETE FROM `users` WHERE `id` = ?;",
			args: []driver.Value{"1"},
			want: `{"status":"success","table":"users"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, mock := newMock(t)
			mock.ExpectBegin()
			exp := mock.ExpectExec(tt.sql)
			if len(tt.args) > 0 {
				exp = exp.WithArgs(tt.args...)
			}
			exp.WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			out := ex.Run(context.Background(), stmt.NewBuilder(stmt.MySQL{}), tt.req)

			if out.Kind != OutcomeStatus {
				t.Fatalf("kind = %v, err = %v", out.Kind, out.Err)
			}
			if got := mustJSON(t, out); got != tt.want {
				t.Errorf("body = %s, want %s", got, tt.want)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestRunTruncateTwiceSucceedsBothTimes(t *testing.T) {
	ex, mock := newMock(t)
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("TRUNCATE TABLE `t`;").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
	}

	b := stmt.NewBuilder(stmt.MySQL{})
	for i := 0; i < 2; i++ {
		out := ex.Run(context.Background(), b, stmt.NewTruncateTable("t"))
		if got, want := mustJSON(t, out), `{"status":"success","table":"t"}`; got != want {
			t.Errorf("run %d: body = %s, want %s", i+1, got, want)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRunBackendErrorRollsBack(t *testing.T) {
	ex, mock := newMock(t)
	backendErr := errors.New("Error 1146 (42S02): Table 'dbms.nope' doesn't exist")
	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE `nope`;").WillReturnError(backendErr)
	mock.ExpectRollback()

	out := ex.Run(context.Background(), stmt.NewBuilder(stmt.MySQL{}), stmt.NewDropTable("nope"))

	if out.ErrorKind() != dberrors.ExecutionFailed {
		t.Fatalf("kind = %v", out.ErrorKind())
	}
	want := `{"error":"Error 1146 (42S02): Table 'dbms.nope' doesn't exist"}`
	if got := mustJSON(t, out); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRunReadErrorIsVerbatim(t *testing.T) {
	ex, mock := newMock(t)
	mock.ExpectQuery("SELECT * FROM `missing`;").WillReturnError(errors.New("table missing"))

	out := ex.Run(context.Background(), stmt.NewBuilder(stmt.MySQL{}), stmt.NewSelectAll("missing"))

	if got, want := mustJSON(t, out), `{"error":"table missing"}`; got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestRunValidationErrorSendsNothing(t *testing.T) {
	ex, mock := newMock(t)

	out := ex.Run(context.Background(), stmt.NewBuilder(stmt.MySQL{}), stmt.NewSelectAll("users;DROP"))

	if out.ErrorKind() != dberrors.InvalidIdentifier {
		t.Errorf("kind = %v, want %v", out.ErrorKind(), dberrors.InvalidIdentifier)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestExecuteArgumentCountMismatch(t *testing.T) {
	ex, mock := newMock(t)

	out := ex.Execute(context.Background(), stmt.Statement{
		Op:           stmt.CallProcedure,
		SQL:          "CALL `p`(?, ?);",
		Args:         []any{"only-one"},
		Placeholders: 2,
	})

	if out.ErrorKind() != dberrors.ArgumentCountMismatch {
		t.Errorf("kind = %v, want %v", out.ErrorKind(), dberrors.ArgumentCountMismatch)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestExecuteBuiltStatementWithLostArgument(t *testing.T) {
	ex, mock := newMock(t)

	st, err := stmt.NewBuilder(stmt.Postgres{}).Build(stmt.NewUpdateRow("users", "name", "bob", "id", "1"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	st.Args = st.Args[:1]

	out := ex.Execute(context.Background(), st)

	if out.ErrorKind() != dberrors.ArgumentCountMismatch {
		t.Errorf("kind = %v, want %v", out.ErrorKind(), dberrors.ArgumentCountMismatch)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestExecuteClosedPoolIsConnectFailure(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	out := New(db, nil).Execute(context.Background(), stmt.Statement{Op: stmt.ListTables, SQL: "SHOW TABLES;"})

	if out.ErrorKind() != dberrors.ConnectFailed {
		t.Errorf("kind = %v, want %v", out.ErrorKind(), dberrors.ConnectFailed)
	}
}

func TestReadSetReportsClosedRows(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	mock.ExpectQuery("SHOW TABLES;").WillReturnRows(sqlmock.NewRows([]string{"t"}).AddRow("a"))

	rows, err := db.Query("SHOW TABLES;")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	rows.Close()

	if _, err := readSet(rows); err == nil {
		t.Error("expected an error reading closed rows")
	}
}
