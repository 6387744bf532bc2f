package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tally-ledger/tally/internal/model"
)

// Header is the CSV header written by CSVBackend.
const Header = "id,amount,kind,category,description,timestamp"

const (
	numFields    = 6
	colID        = 0
	colAmount    = 1
	colKind      = 2
	colCategory  = 3
	colDesc      = 4
	colTimestamp = 5
)

// requiredColumns must be present in a CSV header; id is optional.
var requiredColumns = []string{"amount", "kind", "category", "description", "timestamp"}

// CSVBackend stores a ledger as RFC 4180 CSV with a header row.
type CSVBackend struct{}

// Format returns FormatCSV.
func (CSVBackend) Format() Format { return FormatCSV }

// Encode writes the header and one row per transaction.
func (CSVBackend) Encode(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		if err := cw.Write(MarshalRow(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads a header row and the transactions below it. Columns are
// matched by header name, so their order does not matter.
func (CSVBackend) Decode(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Line: 1, Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, csvError(err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, &ParseError{Line: 1, Field: name, Err: errors.New("missing column")}
		}
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok {
			return ""
		}
		return rec[i]
	}

	var txns []model.Transaction
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := cr.FieldPos(0)

		t, err := record{
			ID:          field(rec, "id"),
			Amount:      field(rec, "amount"),
			Kind:        field(rec, "kind"),
			Category:    field(rec, "category"),
			Description: field(rec, "description"),
			Timestamp:   field(rec, "timestamp"),
		}.transaction()
		if err != nil {
			return nil, atLine(err, line)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// Save writes txns to path.
func (b CSVBackend) Save(path string, txns []model.Transaction) error {
	return writeAtomic(path, func(w io.Writer) error {
		return b.Encode(w, txns)
	})
}

// Load reads the transactions stored at path.
func (b CSVBackend) Load(path string) ([]model.Transaction, error) {
	r, err := readAll(path)
	if err != nil {
		return nil, err
	}
	txns, err := b.Decode(r)
	if err != nil {
		return nil, withPath(err, path)
	}
	return txns, nil
}

// MarshalRow converts a Transaction to a CSV row in Header order.
func MarshalRow(t model.Transaction) []string {
	r := toRecord(t)
	row := make([]string, numFields)
	row[colID] = r.ID
	row[colAmount] = r.Amount
	row[colKind] = r.Kind
	row[colCategory] = r.Category
	row[colDesc] = r.Description
	row[colTimestamp] = r.Timestamp
	return row
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{Err: err}
}
