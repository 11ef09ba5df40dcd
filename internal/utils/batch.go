package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FoldFirst folds rows into a key→model mapping for batch lookups.
//
// Rows are visited in order and the first row seen for a key wins; later rows
// with the same key are discarded. Rows for which key reports ok=false, or
// whose conversion yields nil, are skipped. Callers must order rows
// deterministically (e.g. by primary key) for the tie-break to be stable.
func FoldFirst[K comparable, E any, M any](rows []E, key func(*E) (K, bool), convert func(*E) *M) map[K]*M {
	out := make(map[K]*M, len(rows))
	for i := range rows {
		row := &rows[i]
		k, ok := key(row)
		if !ok {
			continue
		}
		if _, seen := out[k]; seen {
			continue
		}
		m := convert(row)
		if m == nil {
			continue
		}
		out[k] = m
	}
	return out
}

// ParseIDList parses a comma-separated list of positive integer ids such as
// "3,1,3,7". Duplicates are dropped keeping first-occurrence order. Blank
// segments are ignored; any other malformed or non-positive token is an error.
func ParseIDList(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	seen := make(map[int64]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", p)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// UniqueIDs drops non-positive and duplicate ids, keeping first-occurrence order.
func UniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
