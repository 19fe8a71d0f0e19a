// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for gateway reporting.
// Every failure the gateway can hand back to a caller carries a machine-readable
// Kind and a human-friendly message. The kind drives HTTP status mapping in the
// dispatcher; the message is what the caller sees.
//
// Backend rejections keep the driver's diagnostic verbatim in Message so callers
// see the raw database error.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// MissingField indicates a required request field was absent.
	MissingField Kind = "missing_field"
	// InvalidIdentifier indicates a name failed identifier sanitization.
	InvalidIdentifier Kind = "invalid_identifier"
	// InvalidColumnType indicates a CREATE TABLE column type was rejected.
	InvalidColumnType Kind = "invalid_column_type"
	// ArgumentCountMismatch indicates bound values do not match placeholders.
	ArgumentCountMismatch Kind = "argument_count_mismatch"
	// ExecutionFailed indicates the backend rejected the statement.
	ExecutionFailed Kind = "execution_failed"
	// ConfigInvalid indicates unusable configuration.
	ConfigInvalid Kind = "config_invalid"
	// ConnectFailed indicates the database could not be reached.
	ConnectFailed Kind = "connect_failed"
	// Unknown is reported for errors that carry no kind.
	Unknown Kind = "unknown"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// MessageOf returns the caller-facing message of err. For *E that is the
// Message field alone, without the kind prefix.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *E
	if stderrors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
