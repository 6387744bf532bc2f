package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tally-ledger/tally/internal/model"
)

const timestampFormat = time.RFC3339Nano

var errMissing = errors.New("missing required field")

// record is the format-independent, string-typed shape of one persisted
// transaction. Every backend decodes into it before validation.
type record struct {
	ID          string
	Amount      string
	Kind        string
	Category    string
	Description string
	Timestamp   string
}

func toRecord(t model.Transaction) record {
	return record{
		ID:          t.ID,
		Amount:      t.Amount.String(),
		Kind:        string(t.Kind),
		Category:    t.Category,
		Description: t.Description,
		Timestamp:   t.Timestamp.Format(timestampFormat),
	}
}

// transaction validates r. Errors are *ParseError with Field set and
// Line left for the caller.
func (r record) transaction() (model.Transaction, error) {
	if r.Amount == "" {
		return model.Transaction{}, &ParseError{Field: "amount", Err: errMissing}
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return model.Transaction{}, &ParseError{Field: "amount", Err: fmt.Errorf("malformed number %q", r.Amount)}
	}

	if r.Kind == "" {
		return model.Transaction{}, &ParseError{Field: "kind", Err: errMissing}
	}
	kind := model.Kind(r.Kind)
	if !kind.Valid() {
		return model.Transaction{}, &ParseError{Field: "kind", Err: fmt.Errorf("unrecognized kind %q", r.Kind)}
	}

	if r.Timestamp == "" {
		return model.Transaction{}, &ParseError{Field: "timestamp", Err: errMissing}
	}
	ts, err := time.Parse(timestampFormat, r.Timestamp)
	if err != nil {
		return model.Transaction{}, &ParseError{Field: "timestamp", Err: fmt.Errorf("malformed timestamp %q", r.Timestamp)}
	}

	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}

	t, err := model.Restore(id, amount, kind, r.Category, r.Description, ts)
	if err != nil {
		var ve model.ValidationError
		if errors.As(err, &ve) {
			return model.Transaction{}, &ParseError{Field: ve.Field, Err: err}
		}
		return model.Transaction{}, &ParseError{Err: err}
	}
	return t, nil
}

// atLine stamps a record-level ParseError with its position.
func atLine(err error, line int) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Line = line
		return pe
	}
	return &ParseError{Line: line, Err: err}
}
