package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// ChaseParser reads the checking-account statement CSV that Chase offers
// for download. Columns are found by their header names.
type ChaseParser struct{}

const (
	chaseDate      = "01/02/2006"
	chaseRefPrefix = "chase"
	chaseRefLen    = 10
)

// chaseColumns are the headers a statement must carry.
var chaseColumns = []string{"posting date", "description", "amount", "type"}

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse returns one BankRow per statement line, top to bottom. A
// statement with only a header yields no rows.
func (p *ChaseParser) Parse(r io.Reader) ([]BankRow, error) {
	cr := csv.NewReader(r)
	// Chase pads data lines with a trailing comma the header lacks.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading statement header: %w", err)
	}
	cols, err := chaseHeader(header)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	var rows []BankRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading statement: %w", err)
		}
		line, _ := cr.FieldPos(0)

		row, err := cols.row(rec)
		if err != nil {
			return nil, fmt.Errorf("statement line %d: %w", line, err)
		}
		seen[row.Reference]++
		if n := seen[row.Reference]; n > 1 {
			row.Reference = fmt.Sprintf("%s_%d", row.Reference, n)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// chaseCols maps a header name to its field index.
type chaseCols map[string]int

func chaseHeader(header []string) (chaseCols, error) {
	cols := make(chaseCols, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[name] = i
	}
	for _, name := range chaseColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("statement header has no %q column", name)
		}
	}
	return cols, nil
}

func (c chaseCols) get(rec []string, name string) (string, error) {
	i := c[name]
	if i >= len(rec) {
		return "", fmt.Errorf("no %q field", name)
	}
	return strings.TrimSpace(rec[i]), nil
}

func (c chaseCols) row(rec []string) (BankRow, error) {
	var vals [4]string
	for i, name := range chaseColumns {
		v, err := c.get(rec, name)
		if err != nil {
			return BankRow{}, err
		}
		vals[i] = v
	}
	posted, desc, amt, kind := vals[0], vals[1], vals[2], vals[3]

	date, err := time.Parse(chaseDate, posted)
	if err != nil {
		return BankRow{}, fmt.Errorf("parsing date %q: %w", posted, err)
	}
	amount, err := decimal.NewFromString(amt)
	if err != nil {
		return BankRow{}, fmt.Errorf("parsing amount %q: %w", amt, err)
	}

	return BankRow{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Reference:   chaseReference(date, desc),
		Type:        kind,
	}, nil
}

// chaseReference builds chase_<yyyymmdd>_<first ten ASCII letters or
// digits of the description>, e.g. chase_20250103_GITHUBPROS.
func chaseReference(date time.Time, desc string) string {
	var b strings.Builder
	for _, r := range desc {
		if b.Len() == chaseRefLen {
			break
		}
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return fmt.Sprintf("%s_%s_%s", chaseRefPrefix, date.Format("20060102"), b.String())
}
