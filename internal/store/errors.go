package store

import (
	"errors"
	"fmt"
	"io/fs"
)

// IOError reports a filesystem failure while saving or loading.
type IOError struct {
	Op   string // "open", "create", "write", "rename", ...
	Path string
	Err  error
}

// Error names the path once; a wrapped *fs.PathError already carries it.
func (e *IOError) Error() string {
	var pe *fs.PathError
	if errors.As(e.Err, &pe) {
		return fmt.Sprintf("%s ledger: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s ledger %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports persisted data that does not match the schema.
// Line is the 1-based CSV line or JSON array index + 1; zero when the
// problem is not tied to one record.
type ParseError struct {
	Path  string
	Line  int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<input>"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %v", loc, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// withPath fills in the file path on ParseErrors produced by stream
// decoders, which do not know where their input came from.
func withPath(err error, path string) error {
	if pe, ok := err.(*ParseError); ok && pe.Path == "" {
		pe.Path = path
	}
	return err
}
