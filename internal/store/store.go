// Package store persists ledgers to JSON, CSV and SQLite files.
//
// Every save is a full rewrite: the new content is written to a temporary
// file beside the target and renamed over it, so a reader sees either the
// old file or the new one and never a partial write.
package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tally-ledger/tally/internal/ledger"
	"github.com/tally-ledger/tally/internal/model"
)

// Backend reads and writes a complete transaction set in one format.
type Backend interface {
	Format() Format
	Save(path string, txns []model.Transaction) error
	Load(path string) ([]model.Transaction, error)
}

// StreamBackend is a Backend whose encoding can also go to and come from
// an arbitrary stream.
type StreamBackend interface {
	Backend
	Encode(w io.Writer, txns []model.Transaction) error
	Decode(r io.Reader) ([]model.Transaction, error)
}

// Registry holds backends keyed by format.
type Registry struct {
	backends map[Format]Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[Format]Backend)}
}

// Register adds a backend. Panics on duplicate format.
func (r *Registry) Register(b Backend) {
	if _, ok := r.backends[b.Format()]; ok {
		panic("duplicate ledger format: " + string(b.Format()))
	}
	r.backends[b.Format()] = b
}

// Get returns the backend for format, or nil.
func (r *Registry) Get(format Format) Backend {
	return r.backends[format]
}

// DefaultRegistry returns a registry with the JSON, CSV and SQLite backends.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(JSONBackend{})
	r.Register(CSVBackend{})
	r.Register(SQLiteBackend{})
	return r
}

func lookup(format Format) (Backend, error) {
	b := DefaultRegistry().Get(format)
	if b == nil {
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return b, nil
}

// Save writes every transaction in l to path, replacing any existing file.
func Save(l *ledger.Ledger, path string, format Format) error {
	b, err := lookup(format)
	if err != nil {
		return err
	}
	return b.Save(path, l.Transactions())
}

// Load reads path and rebuilds the ledger it holds. On error no ledger
// is returned.
func Load(path string, format Format) (*ledger.Ledger, error) {
	b, err := lookup(format)
	if err != nil {
		return nil, err
	}
	txns, err := b.Load(path)
	if err != nil {
		return nil, err
	}
	l, err := ledger.New(txns...)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return l, nil
}

// Encode writes txns to w in a stream format (json or csv).
func Encode(w io.Writer, format Format, txns []model.Transaction) error {
	sb, err := streamBackend(format)
	if err != nil {
		return err
	}
	return sb.Encode(w, txns)
}

// Decode reads a stream format (json or csv) from r into a ledger.
func Decode(r io.Reader, format Format) (*ledger.Ledger, error) {
	sb, err := streamBackend(format)
	if err != nil {
		return nil, err
	}
	txns, err := sb.Decode(r)
	if err != nil {
		return nil, err
	}
	l, err := ledger.New(txns...)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return l, nil
}

func streamBackend(format Format) (StreamBackend, error) {
	b, err := lookup(format)
	if err != nil {
		return nil, err
	}
	sb, ok := b.(StreamBackend)
	if !ok {
		return nil, fmt.Errorf("format %q cannot be streamed", format)
	}
	return sb, nil
}

// writeAtomic writes through a temporary file in the target directory and
// renames it over path once everything is flushed to disk.
func writeAtomic(path string, write func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := bw.Flush(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &IOError{Op: "sync", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	return commitTemp(tmpName, path)
}

// commitTemp gives a finished temporary file regular permissions and moves
// it into place.
func commitTemp(tmpName, path string) error {
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// readAll reads the whole file so that filesystem failures surface as
// IOError before any decoding starts.
func readAll(path string) (*bytes.Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		op := "read"
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			op = "open"
		}
		return nil, &IOError{Op: op, Path: path, Err: err}
	}
	return bytes.NewReader(data), nil
}
