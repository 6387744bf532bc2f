package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tally-ledger/tally/internal/model"
)

// JSONBackend stores a ledger as an indented JSON array of objects.
type JSONBackend struct{}

type jsonTransaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// jsonInput accepts amount as either a string or a bare number and
// tells a missing field apart from an empty one.
type jsonInput struct {
	ID          *string         `json:"id"`
	Amount      json.RawMessage `json:"amount"`
	Kind        *string         `json:"kind"`
	Category    *string         `json:"category"`
	Description *string         `json:"description"`
	Timestamp   *string         `json:"timestamp"`
}

// Format returns FormatJSON.
func (JSONBackend) Format() Format { return FormatJSON }

// Encode writes txns as a JSON array followed by a newline.
func (JSONBackend) Encode(w io.Writer, txns []model.Transaction) error {
	out := make([]jsonTransaction, 0, len(txns))
	for _, t := range txns {
		r := toRecord(t)
		out = append(out, jsonTransaction(r))
	}
	data, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling transactions: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Decode reads a JSON array of transactions.
func (JSONBackend) Decode(r io.Reader) ([]model.Transaction, error) {
	dec := json.NewDecoder(r)

	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Err: errors.New("empty input, expected a JSON array")}
		}
		return nil, &ParseError{Err: fmt.Errorf("decoding JSON: %w", err)}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Err: errors.New("unexpected data after JSON array")}
	}

	txns := make([]model.Transaction, 0, len(raw))
	for i, item := range raw {
		var in jsonInput
		if err := json.Unmarshal(item, &in); err != nil {
			return nil, &ParseError{Line: i + 1, Err: fmt.Errorf("decoding transaction: %w", err)}
		}
		amount, err := jsonAmount(in.Amount)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Field: "amount", Err: err}
		}
		t, err := record{
			ID:          deref(in.ID),
			Amount:      amount,
			Kind:        deref(in.Kind),
			Category:    deref(in.Category),
			Description: deref(in.Description),
			Timestamp:   deref(in.Timestamp),
		}.transaction()
		if err != nil {
			return nil, atLine(err, i+1)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// Save writes txns to path.
func (b JSONBackend) Save(path string, txns []model.Transaction) error {
	return writeAtomic(path, func(w io.Writer) error {
		return b.Encode(w, txns)
	})
}

// Load reads the transactions stored at path.
func (b JSONBackend) Load(path string) ([]model.Transaction, error) {
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

func jsonAmount(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("malformed number %s", raw)
	}
	return n.String(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
