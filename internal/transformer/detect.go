package transformer

import (
	"fmt"
	"sort"

	"orderetl/internal/schema"
	"orderetl/pkg/records"
)

// UnrecognizedSchemaError reports that column sniffing matched no table kind,
// or more than one. Matched lists the ambiguous candidates, if any.
type UnrecognizedSchemaError struct {
	Matched []schema.Kind
}

func (e *UnrecognizedSchemaError) Error() string {
	if len(e.Matched) == 0 {
		return "table columns match no known kind"
	}
	return fmt.Sprintf("table columns match multiple kinds: %v", e.Matched)
}

func (e *UnrecognizedSchemaError) Unwrap() error { return schema.ErrSchema }

// MissingDependencyError reports a transform that cannot run because a
// reference table it joins against was not supplied.
type MissingDependencyError struct {
	Table      string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("cannot transform %s: %s table not available", e.Table, e.Dependency)
}

func (e *MissingDependencyError) Unwrap() error { return schema.ErrDependency }

// DetectKind sniffs the table kind from the columns of the first row. It is a
// convenience for untagged inputs only; pipelines tag each file explicitly.
// Exactly one kind must match or an error wrapping the schema sentinel is
// returned.
func DetectKind(rows []records.Record) (schema.Kind, error) {
	if len(rows) == 0 {
		return "", &UnrecognizedSchemaError{}
	}
	cols := make(map[string]bool, len(rows[0]))
	for k := range foldColumns(rows[0]) {
		cols[k] = true
	}
	var matched []schema.Kind
	if cols["product_id"] && cols["sale_price"] {
		matched = append(matched, schema.KindOrderItems)
	}
	if cols["num_of_item"] {
		matched = append(matched, schema.KindOrders)
	}
	if cols["sku"] {
		matched = append(matched, schema.KindProducts)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i] < matched[j] })
	if len(matched) != 1 {
		return "", &UnrecognizedSchemaError{Matched: matched}
	}
	return matched[0], nil
}
