// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"google.golang.org/protobuf/types/known/structpb"

	dberrors "dbgate/cli/internal/errors"
)

// ResultSet is one complete set of rows produced by a statement.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// OutcomeKind tags the variant held by an Outcome.
type OutcomeKind string

const (
	OutcomeRows   OutcomeKind = "rows"
	OutcomeStatus OutcomeKind = "status"
	OutcomeError  OutcomeKind = "error"
)

// Outcome is the normalized result of one operation: rows, a status
// acknowledgement, or an error.
type Outcome struct {
	Kind OutcomeKind
	// Rows is the first result set for OutcomeRows.
	Rows ResultSet
	// Drained counts the result sets consumed to produce Rows.
	Drained int
	// RowsAffected is reported by mutations that return a status.
	RowsAffected int64
	// Entity is the table or routine named in a status acknowledgement.
	Entity string
	// Err is set for OutcomeError.
	Err error
}

func RowsOutcome(rs ResultSet, drained int) Outcome {
	if rs.Rows == nil {
		rs.Rows = [][]any{}
	}
	return Outcome{Kind: OutcomeRows, Rows: rs, Drained: drained}
}

func StatusOutcome(entity string, affected int64) Outcome {
	return Outcome{Kind: OutcomeStatus, Entity: entity, RowsAffected: affected}
}

func ErrorOutcome(err error) Outcome {
	return Outcome{Kind: OutcomeError, Err: err}
}

// ErrorKind returns the error category of an error outcome.
func (o Outcome) ErrorKind() dberrors.Kind {
	if o.Kind != OutcomeError {
		return ""
	}
	return dberrors.KindOf(o.Err)
}

// Value returns the uniform response value:
//   - rows:   [][]any, positional cells, no column keys
//   - status: {"status": "success", "table": <entity>}
//   - error:  {"error": <message>}
func (o Outcome) Value() any {
	switch o.Kind {
	case OutcomeRows:
		rows := make([][]any, len(o.Rows.Rows))
		for i, row := range o.Rows.Rows {
			out := make([]any, len(row))
			for j, v := range row {
				out[j] = normalizeCell(v)
			}
			rows[i] = out
		}
		return rows
	case OutcomeStatus:
		return map[string]any{"status": "success", "table": o.Entity}
	default:
		return map[string]any{"error": dberrors.MessageOf(o.Err)}
	}
}

// MarshalJSON encodes the uniform response value.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value())
}

// Proto encodes the uniform response value as a protobuf Value. Cells that
// have no protobuf scalar counterpart are rendered as strings.
func (o Outcome) Proto() (*structpb.Value, error) {
	switch v := o.Value().(type) {
	case [][]any:
		rows := make([]any, len(v))
		for i, row := range v {
			cells := make([]any, len(row))
			for j, c := range row {
				cells[j] = protoCell(c)
			}
			rows[i] = cells
		}
		return structpb.NewValue(rows)
	default:
		return structpb.NewValue(v)
	}
}

// normalizeCell converts driver values into JSON-friendly scalars. Text comes
// back from MySQL as []byte; binary that is not valid UTF-8 is hex encoded.
func normalizeCell(val any) any {
	switch v := val.(type) {
	case nil:
		return nil
	case []byte:
		if utf8.Valid(v) {
			return string(v)
		}
		return fmt.Sprintf("\\x%x", v)
	case [16]byte:
		return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
			v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7],
			v[8], v[9], v[10], v[11], v[12], v[13], v[14], v[15])
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return v
	}
}

func protoCell(val any) any {
	switch v := val.(type) {
	case nil, bool, string, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
