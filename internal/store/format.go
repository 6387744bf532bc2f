package store

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format names an on-disk ledger encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// ParseFormat converts user input such as "CSV" to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatSQLite:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, csv or sqlite)", s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("cannot infer format from %q; pass a format explicitly", path)
	}
}

// Resolve returns format when set, otherwise the format implied by path.
func Resolve(path, format string) (Format, error) {
	if strings.TrimSpace(format) != "" {
		return ParseFormat(format)
	}
	return FormatFromPath(path)
}
