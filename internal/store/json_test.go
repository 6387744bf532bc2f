package store

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_Shape(t *testing.T) {
	l := sampleLedger(t)
	var buf bytes.Buffer
	require.NoError(t, JSONBackend{}.Encode(&buf, l.Transactions()))

	assert.True(t, strings.HasSuffix(buf.String(), "]\n"))
	assert.Contains(t, buf.String(), "\n    {\n        \"id\"")

	var objs []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &objs))
	require.Len(t, objs, 4)
	assert.Equal(t, map[string]string{
		"id":          "6b1c0c35-1d0e-4f0e-9b3a-1f4f2a0e0002",
		"amount":      "50.25",
		"kind":        "expense",
		"category":    "food",
		"description": `Groceries, "organic" & more`,
		"timestamp":   "2025-10-02T18:30:05.123456789Z",
	}, objs[1])
}

func TestJSON_EmptyLedgerIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONBackend{}.Encode(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSON_NumericAmount(t *testing.T) {
	input := `[{"amount": 12.75, "kind": "expense", "category": "food", "timestamp": "2025-01-01T10:00:00Z"}]`
	l, err := Decode(strings.NewReader(input), FormatJSON)
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())

	txn := l.Transactions()[0]
	assert.True(t, txn.Amount.Equal(dec("12.75")))
	assert.NotEmpty(t, txn.ID, "a missing id is assigned on load")
	assert.Empty(t, txn.Description)
}

func TestJSON_ParseErrors(t *testing.T) {
	const ok = `{"id":"a","amount":"5","kind":"expense","category":"food","description":"","timestamp":"2025-01-01T00:00:00Z"}`
	tests := []struct {
		name  string
		input string
		line  int
		field string
	}{
		{"empty input", "", 0, ""},
		{"not an array", `{"amount":"5"}`, 0, ""},
		{"truncated", `[` + ok, 0, ""},
		{"trailing data", `[]{}`, 0, ""},
		{"missing amount", `[{"kind":"expense","category":"food","timestamp":"2025-01-01T00:00:00Z"}]`, 1, "amount"},
		{"malformed amount", `[` + ok + `,{"amount":"1,5","kind":"expense","category":"food","timestamp":"2025-01-01T00:00:00Z"}]`, 2, "amount"},
		{"boolean amount", `[{"amount":true,"kind":"expense","category":"food","timestamp":"2025-01-01T00:00:00Z"}]`, 1, "amount"},
		{"zero amount", `[{"amount":"0","kind":"expense","category":"food","timestamp":"2025-01-01T00:00:00Z"}]`, 1, "amount"},
		{"missing kind", `[{"amount":"5","category":"food","timestamp":"2025-01-01T00:00:00Z"}]`, 1, "kind"},
		{"unrecognized kind", `[{"amount":"5","kind":"gift","category":"food","timestamp":"2025-01-01T00:00:00Z"}]`, 1, "kind"},
		{"missing category", `[{"amount":"5","kind":"income","timestamp":"2025-01-01T00:00:00Z"}]`, 1, "category"},
		{"missing timestamp", `[{"amount":"5","kind":"income","category":"salary"}]`, 1, "timestamp"},
		{"wrong type", `[{"amount":"5","kind":"income","category":7,"timestamp":"2025-01-01T00:00:00Z"}]`, 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Decode(strings.NewReader(tt.input), FormatJSON)
			assert.Nil(t, l)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}
