package validator

import (
	"fmt"
	"strings"

	"orderetl/internal/schema"
)

// sampleLimit caps how many offending values a rule error carries.
const sampleLimit = 5

// MissingColumnsError reports required columns absent from a table.
type MissingColumnsError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns in %s: %s", e.Table, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return schema.ErrSchema }

// EmptyTableError reports a table with no data rows. Structural checks need
// at least one row to see the column set.
type EmptyTableError struct {
	Table string
}

func (e *EmptyTableError) Error() string {
	return fmt.Sprintf("no data rows in %s", e.Table)
}

func (e *EmptyTableError) Unwrap() error { return schema.ErrSchema }

// NullValuesError reports missing values in a critical column.
type NullValuesError struct {
	Table  string
	Column string
	Count  int
}

func (e *NullValuesError) Error() string {
	return fmt.Sprintf("null values found in %s.%s (%d rows)", e.Table, e.Column, e.Count)
}

func (e *NullValuesError) Unwrap() error { return schema.ErrDomain }

// DuplicateKeysError reports duplicated values in the table's key column.
type DuplicateKeysError struct {
	Table   string
	Column  string
	Samples []string
	Total   int
}

func (e *DuplicateKeysError) Error() string {
	return fmt.Sprintf("duplicate primary keys found in %s.%s: %s",
		e.Table, e.Column, sampleList(e.Samples, e.Total))
}

func (e *DuplicateKeysError) Unwrap() error { return schema.ErrIntegrity }

// InvalidEnumError reports status values outside the closed enum.
type InvalidEnumError struct {
	Table  string
	Column string
	Values []string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("invalid status values in %s.%s: [%s]",
		e.Table, e.Column, strings.Join(e.Values, " "))
}

func (e *InvalidEnumError) Unwrap() error { return schema.ErrDomain }

// InvalidDatetimeError reports a non-empty value that does not parse under
// the strict timestamp format.
type InvalidDatetimeError struct {
	Table  string
	Column string
	Sample string
}

func (e *InvalidDatetimeError) Error() string {
	return fmt.Sprintf("invalid datetime format in %s.%s: %q", e.Table, e.Column, e.Sample)
}

func (e *InvalidDatetimeError) Unwrap() error { return schema.ErrDomain }

// InvalidNumericError reports values that fail to parse as decimals or fall
// outside the column's range bound.
type InvalidNumericError struct {
	Table   string
	Column  string
	Rule    string
	Samples []string
	Total   int
}

func (e *InvalidNumericError) Error() string {
	return fmt.Sprintf("invalid numeric values in %s.%s (want %s): %s",
		e.Table, e.Column, e.Rule, sampleList(e.Samples, e.Total))
}

func (e *InvalidNumericError) Unwrap() error { return schema.ErrDomain }

// InvalidForeignKeyError reports foreign-key values with no referent in the
// reference table.
type InvalidForeignKeyError struct {
	Table     string
	Column    string
	RefTable  string
	RefColumn string
	Samples   []string
	Total     int
}

func (e *InvalidForeignKeyError) Error() string {
	return fmt.Sprintf("invalid foreign keys in %s.%s: %s",
		e.Table, e.Column, sampleList(e.Samples, e.Total))
}

func (e *InvalidForeignKeyError) Unwrap() error { return schema.ErrIntegrity }

// sampleList renders offending values, appending "..." when the sample was
// truncated.
func sampleList(samples []string, total int) string {
	s := "[" + strings.Join(samples, " ") + "]"
	if total > len(samples) {
		s += "..."
	}
	return s
}
