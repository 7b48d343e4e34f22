package query

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vdellis/inkpost/internal/apperr"
)

// Field is one column/value pair of a record.
type Field struct {
	Column string
	Value  any
}

// Record is an ordered list of column/value pairs. The order is significant:
// it determines both the column list and the bound-argument order of the SQL
// the accessor builds, so a map type must never be substituted here.
type Record []Field

// Columns returns the column names in record order.
func (r Record) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}
	return cols
}

// Values returns the values in record order.
func (r Record) Values() []any {
	vals := make([]any, len(r))
	for i, f := range r {
		vals[i] = f.Value
	}
	return vals
}

// Get returns the value for a column and whether it was present.
func (r Record) Get(column string) (any, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value for a column, appending the field if absent.
func (r *Record) Set(column string, value any) {
	for i, f := range *r {
		if f.Column == column {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, Field{Column: column, Value: value})
}

// Map flattens the record for JSON responses.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Column] = f.Value
	}
	return m
}

// DecodeRecord reads a flat JSON object into a Record, preserving the key
// order of the request body. Keys outside the allowed column list are
// silently dropped, so free-form client keys never reach SQL text.
func DecodeRecord(body io.Reader, allowed []string) (Record, error) {
	ok := make(map[string]bool, len(allowed))
	for _, c := range allowed {
		ok[c] = true
	}

	dec := json.NewDecoder(body)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSON body", apperr.ErrInvalidInput)
	}
	if d, _ := tok.(json.Delim); d != '{' {
		return nil, fmt.Errorf("%w: expected JSON object", apperr.ErrInvalidInput)
	}

	var rec Record
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: invalid JSON body", apperr.ErrInvalidInput)
		}
		key := keyTok.(string)

		var val any
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON body", apperr.ErrInvalidInput)
		}
		if n, isNum := val.(json.Number); isNum {
			if i, err := n.Int64(); err == nil {
				val = i
			} else if f, err := n.Float64(); err == nil {
				val = f
			}
		}
		if ok[key] {
			rec = append(rec, Field{Column: key, Value: val})
		}
	}
	return rec, nil
}
