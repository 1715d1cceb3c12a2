// Package records defines the raw row representation exchanged between the
// parser, validator, and transformer stages.
//
// A Record is a single parsed row keyed by canonical column name. Values are
// either string (as read from the source) or nil for cells that were empty in
// the input. Typed interpretation (numbers, timestamps) happens downstream;
// keeping raw rows stringly lets the validator report the offending input
// text verbatim.
package records

import (
	"fmt"
	"strconv"
	"time"
)

// Record is one raw row. Keys are canonical (lowercased, underscored) column
// names; values are string or nil.
type Record map[string]any

// Has reports whether the column exists and holds a non-nil, non-empty value.
func (r Record) Has(col string) bool {
	v, ok := r[col]
	if !ok || v == nil {
		return false
	}
	s, isStr := v.(string)
	return !isStr || s != ""
}

// String returns the value of col rendered as a string, or "" when the cell
// is absent or nil.
func (r Record) String(col string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	return AsString(v)
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Columns returns the number of distinct columns in the record.
func (r Record) Columns() int { return len(r) }

// AsString converts common cell value types to string without fmt.Sprint on
// the hot path.
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
