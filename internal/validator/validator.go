// Package validator implements the admission gate for raw table extracts:
// structural, null, uniqueness, enum, datetime, numeric, and referential
// checks over parsed CSV rows.
//
// Checks within one table short-circuit at the first failing rule; the
// whole-dataset entry point runs each table and each relationship
// independently and aggregates every error into a single report.
package validator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"orderetl/internal/schema"
	"orderetl/pkg/records"
)

// FileStats are per-table row/column counts included in the dataset report.
type FileStats struct {
	RowCount    int `json:"row_count"`
	ColumnCount int `json:"column_count"`
}

// TableResult is the outcome of validating a single table. Err is nil when
// every rule passed.
type TableResult struct {
	Table string
	Stats FileStats
	Err   error
}

// ValidateTable runs the per-table rule chain for kind over rows. Rules run
// in a fixed order (columns, nulls, key uniqueness, enum, datetime, numeric)
// and the first failure stops further checks for the table.
func ValidateTable(kind schema.Kind, rows []records.Record) TableResult {
	table := string(kind)
	res := TableResult{Table: table, Stats: statsOf(rows)}

	c, ok := schema.ContractFor(kind)
	if !ok {
		res.Err = fmt.Errorf("%w: unknown table kind %q", schema.ErrSchema, kind)
		return res
	}
	if len(rows) == 0 {
		res.Err = &EmptyTableError{Table: table}
		return res
	}

	checks := []func(string, schema.Contract, []records.Record) error{
		checkColumns,
		checkNulls,
		checkDuplicates,
		checkEnum,
		checkDatetime,
		checkNumeric,
	}
	for _, check := range checks {
		if err := check(table, c, rows); err != nil {
			res.Err = err
			return res
		}
	}
	return res
}

// ValidateReference checks that every non-null value of fkColumn in rows
// exists in refColumn of refRows. Offending values are reported distinct, in
// first-seen order, capped at five samples.
func ValidateReference(table string, rows []records.Record, fkColumn, refTable string, refRows []records.Record, refColumn string) error {
	refKeys := make(map[string]struct{}, len(refRows))
	for _, r := range refRows {
		if r.Has(refColumn) {
			refKeys[r.String(refColumn)] = struct{}{}
		}
	}

	var samples []string
	seen := make(map[string]struct{})
	total := 0
	for _, r := range rows {
		if !r.Has(fkColumn) {
			continue
		}
		v := r.String(fkColumn)
		if _, ok := refKeys[v]; ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		total++
		if len(samples) < sampleLimit {
			samples = append(samples, v)
		}
	}
	if total > 0 {
		return &InvalidForeignKeyError{
			Table: table, Column: fkColumn,
			RefTable: refTable, RefColumn: refColumn,
			Samples: samples, Total: total,
		}
	}
	return nil
}

func statsOf(rows []records.Record) FileStats {
	st := FileStats{RowCount: len(rows)}
	if len(rows) > 0 {
		st.ColumnCount = rows[0].Columns()
	}
	return st
}

func checkColumns(table string, c schema.Contract, rows []records.Record) error {
	var missing []string
	for _, col := range c.Required {
		if _, ok := rows[0][col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Table: table, Columns: missing}
	}
	return nil
}

func checkNulls(table string, c schema.Contract, rows []records.Record) error {
	for _, col := range c.Critical {
		count := 0
		for _, r := range rows {
			if !r.Has(col) {
				count++
			}
		}
		if count > 0 {
			return &NullValuesError{Table: table, Column: col, Count: count}
		}
	}
	return nil
}

func checkDuplicates(table string, c schema.Contract, rows []records.Record) error {
	seen := make(map[string]struct{}, len(rows))
	var samples []string
	total := 0
	for _, r := range rows {
		v := r.String(c.Key)
		if _, dup := seen[v]; dup {
			total++
			if len(samples) < sampleLimit {
				samples = append(samples, v)
			}
			continue
		}
		seen[v] = struct{}{}
	}
	if total > 0 {
		return &DuplicateKeysError{Table: table, Column: c.Key, Samples: samples, Total: total}
	}
	return nil
}

func checkEnum(table string, c schema.Contract, rows []records.Record) error {
	if c.StatusColumn == "" {
		return nil
	}
	valid := make(map[string]struct{}, len(schema.ValidStatuses))
	for _, s := range schema.ValidStatuses {
		valid[s] = struct{}{}
	}

	var invalid []string
	seen := make(map[string]struct{})
	for _, r := range rows {
		if !r.Has(c.StatusColumn) {
			continue // nullness is the critical-column check's business
		}
		v := r.String(c.StatusColumn)
		if _, ok := valid[v]; ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		invalid = append(invalid, v)
	}
	if len(invalid) > 0 {
		return &InvalidEnumError{Table: table, Column: c.StatusColumn, Values: invalid}
	}
	return nil
}

// checkDatetime enforces the strict timestamp format on every non-empty value
// of the contract's datetime columns. Empty cells pass here; whether the
// column may be empty at all is the critical-column check's concern.
func checkDatetime(table string, c schema.Contract, rows []records.Record) error {
	for _, col := range c.DatetimeColumns {
		if _, present := rows[0][col]; !present {
			continue
		}
		for _, r := range rows {
			if !r.Has(col) {
				continue
			}
			v := r.String(col)
			if !parseStrict(v) {
				return &InvalidDatetimeError{Table: table, Column: col, Sample: v}
			}
		}
	}
	return nil
}

// parseStrict accepts the fixed timestamp layout or a bare calendar date.
func parseStrict(s string) bool {
	if _, err := time.Parse(schema.TimeLayout, s); err == nil {
		return true
	}
	if _, err := time.Parse(schema.DateLayout, s); err == nil {
		return true
	}
	return false
}

func checkNumeric(table string, c schema.Contract, rows []records.Record) error {
	for _, rule := range c.NumericColumns {
		if _, present := rows[0][rule.Column]; !present {
			continue
		}
		var samples []string
		total := 0
		for _, r := range rows {
			if !r.Has(rule.Column) {
				continue
			}
			v := r.String(rule.Column)
			d, err := decimal.NewFromString(v)
			if err == nil && rule.Holds(d) {
				continue
			}
			total++
			if len(samples) < sampleLimit {
				samples = append(samples, v)
			}
		}
		if total > 0 {
			return &InvalidNumericError{
				Table: table, Column: rule.Column, Rule: rule.Describe(),
				Samples: samples, Total: total,
			}
		}
	}
	return nil
}
