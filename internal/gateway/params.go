// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package gateway

import (
	"net/url"
	"strconv"

	"dbgate/cli/internal/stmt"
)

// numbered collects prefix1, prefix2, ... in order, stopping at the first
// key that is absent. A present but empty value is kept.
func numbered(q url.Values, prefix string) []any {
	var out []any
	for i := 1; ; i++ {
		key := prefix + strconv.Itoa(i)
		if !q.Has(key) {
			return out
		}
		out = append(out, q.Get(key))
	}
}

// columns pairs colN with typeN, probing colN from 1 until the first gap.
// A missing typeN is passed through empty so the builder can name it.
func columns(q url.Values) []stmt.ColumnDef {
	var cols []stmt.ColumnDef
	for i := 1; ; i++ {
		n := strconv.Itoa(i)
		if !q.Has("col" + n) {
			return cols
		}
		cols = append(cols, stmt.ColumnDef{Name: q.Get("col" + n), Type: q.Get("type" + n)})
	}
}

// optional returns nil when key is absent so the builder reports it missing.
func optional(q url.Values, key string) any {
	if !q.Has(key) {
		return nil
	}
	return q.Get(key)
}
