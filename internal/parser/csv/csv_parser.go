// Package csv implements a streaming CSV parser for the pipeline's raw table
// extracts. It normalizes headers to canonical snake_case keys, maps empty
// cells to nil, and soft-fails malformed rows instead of aborting the parse.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"orderetl/pkg/records"
)

// Options configures the CSV parser behavior. All fields are optional;
// sensible defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// ExpectedFields, when > 0 and HasHeader is false, synthesizes col_N keys
	// and enforces a fixed field count per record.
	ExpectedFields int

	// HeaderMap maps source header names to canonical keys before the default
	// normalization is applied. Only applies when HasHeader is true.
	HeaderMap map[string]string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\ufeff"

// skipLogLimit caps the number of per-row skip log lines per parse.
const skipLogLimit = 400

// Parse consumes CSV records from r and returns the parsed rows along with
// the number of rows that were skipped due to parse errors or field-count
// mismatches. Rows are keyed by canonical header name; empty cells become
// nil values.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1 // width enforced after read, per row

	var headers []string
	var out []records.Record
	var skipped int

	if p.opt.HasHeader {
		h, err := cr.Read()
		if err != nil {
			return nil, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = NormalizeHeaders(h, p.opt.HeaderMap)
	} else if p.opt.ExpectedFields > 0 {
		headers = make([]string, p.opt.ExpectedFields)
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i)
		}
	}

	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < skipLogLimit {
				log.Printf("csv: skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}
		if len(headers) > 0 && len(row) != len(headers) {
			if skipped < skipLogLimit {
				log.Printf("csv: skipping row %d: expected %d fields, got %d", line, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			val = CleanCell(val)
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[keyFor(i, headers)] = emptyToNil(val)
		}
		out = append(out, rec)
	}

	return out, skipped, nil
}

// keyFor returns the column key for index idx, using headers when available,
// otherwise synthesizing a "col_N" name.
func keyFor(idx int, headers []string) string {
	if idx < len(headers) {
		return headers[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

// emptyToNil maps empty strings onto nil so downstream stages can distinguish
// "absent" from a real value without checking for "".
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NormalizeHeaders produces canonical header keys: HeaderMap overrides first,
// then lowercasing with spaces replaced by underscores. A UTF-8 BOM on the
// first cell is stripped.
func NormalizeHeaders(h []string, headerMap map[string]string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if headerMap != nil {
			if m, ok := headerMap[c]; ok {
				res[i] = m
				continue
			}
		}
		res[i] = CanonicalName(c)
	}
	return res
}

// CanonicalName folds a column name to its canonical form: lowercase, spaces
// replaced with underscores.
func CanonicalName(c string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(c)), " ", "_")
}
