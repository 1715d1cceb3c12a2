package transformer

import (
	"time"

	"orderetl/internal/schema"
	"orderetl/pkg/records"
)

// lenientLayouts are tried in order when coercing a timestamp cell. The
// validator accepts only the first and last; transformation also tolerates
// zone-suffixed and space-separated variants seen in upstream exports.
var lenientLayouts = []string{
	schema.TimeLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	schema.DateLayout,
}

// coerceTime parses the named cell against the lenient layouts. Empty and
// unparsable cells become nil; transformation never fails on a bad timestamp.
func coerceTime(row records.Record, col string) *time.Time {
	s := row.String(col)
	if s == "" {
		return nil
	}
	for _, layout := range lenientLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
