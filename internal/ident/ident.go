// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package ident validates user-supplied names that end up in identifier
// positions of generated SQL (tables, columns, procedures, functions).
//
// Drivers cannot bind identifiers as parameters, so this package is the only
// guard for those positions. An Identifier can only be obtained through
// Sanitize; statement builders accept Identifier, never string.
package ident

import (
	"fmt"

	dberrors "dbgate/cli/internal/errors"
)

// MaxLen is the longest identifier accepted. It matches MySQL's limit.
const MaxLen = 64

// Identifier is a name that passed Sanitize and is safe to embed in SQL text
// once quoted by a dialect.
type Identifier struct {
	name string
}

// String returns the validated name without quoting.
func (i Identifier) String() string { return i.name }

// Sanitize checks raw against the identifier grammar: ASCII letters, digits
// and underscore, 1..MaxLen bytes. Anything else is rejected as
// InvalidIdentifier; nothing is escaped or rewritten.
func Sanitize(raw string) (Identifier, error) {
	if raw == "" {
		return Identifier{}, dberrors.New(dberrors.InvalidIdentifier, "identifier is empty")
	}
	if len(raw) > MaxLen {
		return Identifier{}, dberrors.New(dberrors.InvalidIdentifier,
			fmt.Sprintf("identifier %q exceeds %d characters", truncate(raw, 16), MaxLen))
	}
	for i := 0; i < len(raw); i++ {
		if !allowed(raw[i]) {
			return Identifier{}, dberrors.New(dberrors.InvalidIdentifier,
				fmt.Sprintf("identifier %q contains invalid character %q", raw, raw[i]))
		}
	}
	return Identifier{name: raw}, nil
}

// SanitizeAll sanitizes names in order and stops at the first failure.
func SanitizeAll(raw ...string) ([]Identifier, error) {
	out := make([]Identifier, 0, len(raw))
	for _, r := range raw {
		id, err := Sanitize(r)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func allowed(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_':
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
