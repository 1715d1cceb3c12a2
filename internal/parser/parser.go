package parser

import (
	"io"

	"orderetl/pkg/records"
)

// Parser turns raw bytes into records. The int return is the number of rows
// skipped by soft-fail handling.
type Parser interface {
	Parse(r io.Reader) ([]records.Record, int, error)
}
