package validator

import (
	"orderetl/internal/schema"
	"orderetl/pkg/records"
)

// Report is the aggregated outcome of a whole-dataset validation run. Errors
// holds one message per independently failing rule; FileStats records
// row/column counts for every table regardless of validity.
type Report struct {
	IsValid   bool                 `json:"is_valid"`
	Errors    []string             `json:"errors"`
	FileStats map[string]FileStats `json:"file_stats"`
}

// ValidateDataset validates all three tables and their relationships.
//
// Each table is validated independently (its own rule chain short-circuits,
// but one table's failure never hides another's). The two foreign-key
// relationships are checked only when both ends passed their table checks;
// a reference into a table that is itself invalid would only produce noise.
func ValidateDataset(orders, orderItems, products []records.Record) Report {
	rep := Report{FileStats: make(map[string]FileStats, 3)}

	ordersRes := ValidateTable(schema.KindOrders, orders)
	itemsRes := ValidateTable(schema.KindOrderItems, orderItems)
	productsRes := ValidateTable(schema.KindProducts, products)

	for _, res := range []TableResult{ordersRes, itemsRes, productsRes} {
		rep.FileStats[res.Table] = res.Stats
		if res.Err != nil {
			rep.Errors = append(rep.Errors, res.Err.Error())
		}
	}

	if itemsRes.Err == nil && ordersRes.Err == nil {
		if err := ValidateReference(itemsRes.Table, orderItems, "order_id", ordersRes.Table, orders, "order_id"); err != nil {
			rep.Errors = append(rep.Errors, err.Error())
		}
	}
	if itemsRes.Err == nil && productsRes.Err == nil {
		if err := ValidateReference(itemsRes.Table, orderItems, "product_id", productsRes.Table, products, "id"); err != nil {
			rep.Errors = append(rep.Errors, err.Error())
		}
	}

	rep.IsValid = len(rep.Errors) == 0
	return rep
}
