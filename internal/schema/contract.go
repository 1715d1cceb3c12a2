package schema

import "github.com/shopspring/decimal"

// NumericRule constrains a numeric column. Values must parse as decimals and
// satisfy the bound: value > Min when Exclusive, value >= Min otherwise.
type NumericRule struct {
	Column    string
	Min       decimal.Decimal
	Exclusive bool
}

// Holds reports whether v satisfies the rule's range bound.
func (r NumericRule) Holds(v decimal.Decimal) bool {
	if r.Exclusive {
		return v.GreaterThan(r.Min)
	}
	return v.GreaterThanOrEqual(r.Min)
}

// Describe renders the bound for error messages, e.g. ">= 0".
func (r NumericRule) Describe() string {
	op := ">="
	if r.Exclusive {
		op = ">"
	}
	return op + " " + r.Min.String()
}

// Contract is the per-table validation contract: which columns must exist,
// which must be non-null, the unique key, and the typed column rules.
type Contract struct {
	Kind Kind

	// Required columns must all be present for the structural check to pass.
	Required []string

	// Critical columns must contain no missing values.
	Critical []string

	// Key is the unique primary-key column.
	Key string

	// StatusColumn names the enum-checked column ("" when the table has none).
	StatusColumn string

	// DatetimeColumns are checked against TimeLayout; empty cells pass only
	// for columns not listed in Critical.
	DatetimeColumns []string

	// NumericColumns are checked for decimal parseability and range.
	NumericColumns []NumericRule
}

var contracts = map[Kind]Contract{
	KindOrders: {
		Kind:            KindOrders,
		Required:        []string{"order_id", "user_id", "status", "created_at", "shipped_at", "delivered_at", "num_of_item"},
		Critical:        []string{"order_id", "user_id", "status", "created_at"},
		Key:             "order_id",
		StatusColumn:    "status",
		DatetimeColumns: []string{"created_at", "shipped_at", "delivered_at", "returned_at"},
		NumericColumns: []NumericRule{
			{Column: "num_of_item", Min: decimal.Zero, Exclusive: true},
		},
	},
	KindOrderItems: {
		Kind:            KindOrderItems,
		Required:        []string{"id", "order_id", "user_id", "product_id", "status", "created_at", "sale_price"},
		Critical:        []string{"id", "order_id", "user_id", "product_id", "status", "created_at"},
		Key:             "id",
		StatusColumn:    "status",
		DatetimeColumns: []string{"created_at", "shipped_at", "delivered_at", "returned_at"},
		NumericColumns: []NumericRule{
			{Column: "sale_price", Min: decimal.Zero},
		},
	},
	KindProducts: {
		Kind:     KindProducts,
		Required: []string{"id", "category", "cost", "retail_price"},
		Critical: []string{"id", "category"},
		Key:      "id",
		NumericColumns: []NumericRule{
			{Column: "cost", Min: decimal.Zero},
			{Column: "retail_price", Min: decimal.Zero},
		},
	},
}

// ContractFor returns the validation contract for kind. The second return is
// false for unknown kinds.
func ContractFor(kind Kind) (Contract, bool) {
	c, ok := contracts[kind]
	return c, ok
}

// Kinds lists the known table kinds in pipeline order.
func Kinds() []Kind {
	return []Kind{KindOrders, KindOrderItems, KindProducts}
}
