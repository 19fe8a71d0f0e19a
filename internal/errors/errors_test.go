// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := stderrors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: Unknown},
		{name: "plain error", err: base, want: Unknown},
		{name: "typed", err: New(MissingField, "table"), want: MissingField},
		{name: "wrapped typed", err: fmt.Errorf("handler: %w", Wrap(ExecutionFailed, "no such table", base)), want: ExecutionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(New(MissingField, "no columns provided")); got != "no columns provided" {
		t.Errorf("MessageOf() = %q", got)
	}
	if got := MessageOf(stderrors.New("raw")); got != "raw" {
		t.Errorf("MessageOf() = %q", got)
	}
	if got := MessageOf(nil); got != "" {
		t.Errorf("MessageOf(nil) = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	base := stderrors.New("driver: bad connection")
	err := Wrap(ExecutionFailed, "driver: bad connection", base)
	if !stderrors.Is(err, base) {
		t.Error("expected wrapped error to match base via errors.Is")
	}
	if err.Error() != "execution_failed: driver: bad connection: driver: bad connection" {
		t.Errorf("Error() = %q", err.Error())
	}
}
