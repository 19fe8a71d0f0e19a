// Package sqlexec executes built statements over a database/sql pool.
// Every call acquires its own connection, so concurrent callers never share
// a session and no result set is left pending between requests.
//
// Transaction policy:
//   - reads (list, describe, select, function call) run without a transaction
//   - DDL and DML run in BeginTx, Exec, Commit
//   - procedure calls run in a transaction, drain every result set, then commit
package sqlexec

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pterm/pterm"

	dberrors "dbgate/cli/internal/errors"
	"dbgate/cli/internal/logging"
	"dbgate/cli/internal/stmt"
)

// Executor runs statements against a connection pool.
type Executor struct {
	// DB is the connection pool. Its MaxOpenConns bounds concurrency.
	DB     *sql.DB
	logger *pterm.Logger
}

// New creates an Executor over db. A nil logger discards output.
func New(db *sql.DB, logger *pterm.Logger) *Executor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Executor{DB: db, logger: logger}
}

// Run builds req with b and executes it.
func (e *Executor) Run(ctx context.Context, b *stmt.Builder, req stmt.Request) Outcome {
	st, err := b.Build(req)
	if err != nil {
		e.logger.Debug("request rejected", e.logger.Args("op", string(req.Op), "error", err.Error()))
		return ErrorOutcome(err)
	}
	return e.Execute(ctx, st)
}

// Execute sends st to the database and normalizes the result. Errors are
// reported in the returned Outcome, never as a Go error.
func (e *Executor) Execute(ctx context.Context, st stmt.Statement) Outcome {
	if st.Placeholders != len(st.Args) {
		return ErrorOutcome(dberrors.New(dberrors.ArgumentCountMismatch,
			fmt.Sprintf("statement has %d placeholders but %d arguments were supplied", st.Placeholders, len(st.Args))))
	}

	conn, err := e.DB.Conn(ctx)
	if err != nil {
		e.logger.Error("acquire connection failed", e.logger.Args("error", logging.Mask(err.Error())))
		return ErrorOutcome(dberrors.Wrap(dberrors.ConnectFailed, err.Error(), err))
	}
	defer conn.Close()

	e.logger.Debug("execute", e.logger.Args("op", string(st.Op), "sql", st.SQL, "args", len(st.Args)))

	var out Outcome
	switch {
	case st.Op == stmt.CallProcedure:
		out = e.callProcedure(ctx, conn, st)
	case st.Op.Mutates():
		out = e.exec(ctx, conn, st)
	default:
		out = e.query(ctx, conn, st)
	}

	if out.Kind == OutcomeError {
		e.logger.Warn("statement failed", e.logger.Args("op", string(st.Op), "error", out.Err.Error()))
	}
	return out
}

func failed(err error) Outcome {
	return ErrorOutcome(dberrors.Wrap(dberrors.ExecutionFailed, err.Error(), err))
}

// exec runs a DDL or DML statement and commits it.
func (e *Executor) exec(ctx context.Context, conn *sql.Conn, st stmt.Statement) Outcome {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return failed(err)
	}
	defer tx.Rollback() // no-op after commit

	res, err := tx.ExecContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return failed(err)
	}
	var affected int64
	if n, err := res.RowsAffected(); err == nil {
		affected = n
	}

	if err := tx.Commit(); err != nil {
		return failed(err)
	}
	return StatusOutcome(st.Entity, affected)
}

// query runs a read. Only the first result set is returned; anything after
// it is drained before the connection goes back to the pool.
func (e *Executor) query(ctx context.Context, conn *sql.Conn, st stmt.Statement) Outcome {
	rows, err := conn.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return failed(err)
	}
	defer rows.Close()

	first, drained, err := drain(rows)
	if err != nil {
		return failed(err)
	}
	return RowsOutcome(first, drained)
}

// callProcedure runs CALL inside a transaction. The routine may emit several
// result sets plus a trailing status; all are consumed before commit.
func (e *Executor) callProcedure(ctx context.Context, conn *sql.Conn, st stmt.Statement) Outcome {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return failed(err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return failed(err)
	}
	first, drained, err := drain(rows)
	rows.Close()
	if err != nil {
		return failed(err)
	}

	if err := tx.Commit(); err != nil {
		return failed(err)
	}
	if drained > 1 {
		e.logger.Debug("discarded extra result sets", e.logger.Args("routine", st.Entity, "sets", drained))
	}
	return RowsOutcome(first, drained)
}

// drain reads the first result set fully and consumes every following one.
// It returns the first set and the number of sets seen.
func drain(rows *sql.Rows) (ResultSet, int, error) {
	first, err := readSet(rows)
	if err != nil {
		return ResultSet{}, 0, err
	}
	sets := 1
	for rows.NextResultSet() {
		for rows.Next() {
		}
		if err := rows.Err(); err != nil {
			return ResultSet{}, sets, err
		}
		sets++
	}
	if err := rows.Err(); err != nil {
		return ResultSet{}, sets, err
	}
	return first, sets, nil
}

func readSet(rows *sql.Rows) (ResultSet, error) {
	rs := ResultSet{Rows: [][]any{}}
	cols, err := rows.Columns()
	if err != nil {
		return ResultSet{}, err
	}
	rs.Columns = cols

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return ResultSet{}, err
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return ResultSet{}, err
	}
	return rs, nil
}
