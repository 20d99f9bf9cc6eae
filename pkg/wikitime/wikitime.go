// Package wikitime converts between time.Time and the fixed-width
// YYYYMMDDHHMMSS strings the ratings database stores.
package wikitime

import (
	"fmt"
	"time"
)

// Layout is the storage-boundary timestamp format.
const Layout = "20060102150405"

// Stamp formats t as a storage timestamp. The zero time yields the empty
// string, which maps to NULL at the database boundary.
func Stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(Layout)
}

// Parse reads a storage timestamp. The empty string yields the zero time.
func Parse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse wiki timestamp %q: %w", s, err)
	}
	return t, nil
}
