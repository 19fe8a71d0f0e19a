// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"google.golang.org/protobuf/proto"

	dberrors "dbgate/cli/internal/errors"
	"dbgate/cli/internal/sqlexec"
)

const contentTypeProtobuf = "application/x-protobuf"

// statusFor maps an outcome to its HTTP status. Validation failures are the
// caller's fault; backend rejections are not.
func statusFor(out sqlexec.Outcome) int {
	if out.Kind != sqlexec.OutcomeError {
		return http.StatusOK
	}
	switch out.ErrorKind() {
	case dberrors.MissingField, dberrors.InvalidIdentifier, dberrors.InvalidColumnType, dberrors.ArgumentCountMismatch:
		return http.StatusBadRequest
	case dberrors.ConnectFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func wantsProtobuf(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), contentTypeProtobuf)
}

// writeOutcome encodes out as JSON, or as a protobuf Value when the client
// asks for application/x-protobuf.
func writeOutcome(w http.ResponseWriter, r *http.Request, out sqlexec.Outcome) {
	status := statusFor(out)

	if wantsProtobuf(r) {
		v, err := out.Proto()
		if err == nil {
			var b []byte
			if b, err = proto.Marshal(v); err == nil {
				w.Header().Set("Content-Type", contentTypeProtobuf)
				w.WriteHeader(status)
				_, _ = w.Write(b)
				return
			}
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, status, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
