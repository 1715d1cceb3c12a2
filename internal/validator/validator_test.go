package validator

import (
	"errors"
	"strings"
	"testing"

	"orderetl/internal/schema"
	"orderetl/pkg/records"
)

// validOrder returns a structurally complete raw order row; overrides patch
// individual columns (nil deletes are expressed by setting nil).
func validOrder(over records.Record) records.Record {
	r := records.Record{
		"order_id":     "o-1",
		"user_id":      "u-1",
		"status":       "pending",
		"created_at":   "2024-01-01T10:00:00",
		"shipped_at":   nil,
		"delivered_at": nil,
		"returned_at":  nil,
		"num_of_item":  "2",
	}
	for k, v := range over {
		r[k] = v
	}
	return r
}

func validItem(over records.Record) records.Record {
	r := records.Record{
		"id":           "i-1",
		"order_id":     "o-1",
		"user_id":      "u-1",
		"product_id":   "p-1",
		"status":       "delivered",
		"created_at":   "2024-01-01T10:00:00",
		"shipped_at":   nil,
		"delivered_at": nil,
		"returned_at":  nil,
		"sale_price":   "19.99",
	}
	for k, v := range over {
		r[k] = v
	}
	return r
}

func validProduct(over records.Record) records.Record {
	r := records.Record{
		"id":           "p-1",
		"category":     "Accessories",
		"cost":         "5.00",
		"retail_price": "12.50",
	}
	for k, v := range over {
		r[k] = v
	}
	return r
}

func TestValidateTable_ValidOrders(t *testing.T) {
	res := ValidateTable(schema.KindOrders, []records.Record{validOrder(nil)})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Stats.RowCount != 1 {
		t.Errorf("RowCount=%d; want 1", res.Stats.RowCount)
	}
	if res.Stats.ColumnCount != 8 {
		t.Errorf("ColumnCount=%d; want 8", res.Stats.ColumnCount)
	}
}

func TestValidateTable_RuleFailures(t *testing.T) {
	missing := validOrder(nil)
	delete(missing, "num_of_item")
	delete(missing, "status")

	cases := []struct {
		name     string
		kind     schema.Kind
		rows     []records.Record
		sentinel error
		contains string
	}{
		{
			name:     "missing columns",
			kind:     schema.KindOrders,
			rows:     []records.Record{missing},
			sentinel: schema.ErrSchema,
			contains: "missing required columns in orders",
		},
		{
			name:     "null critical column",
			kind:     schema.KindOrders,
			rows:     []records.Record{validOrder(records.Record{"user_id": nil})},
			sentinel: schema.ErrDomain,
			contains: "null values found in orders.user_id",
		},
		{
			name: "duplicate keys",
			kind: schema.KindOrders,
			rows: []records.Record{
				validOrder(nil),
				validOrder(records.Record{"user_id": "u-2"}),
			},
			sentinel: schema.ErrIntegrity,
			contains: "duplicate primary keys found in orders.order_id: [o-1]",
		},
		{
			name:     "invalid enum",
			kind:     schema.KindOrders,
			rows:     []records.Record{validOrder(records.Record{"status": "lost"})},
			sentinel: schema.ErrDomain,
			contains: "invalid status values in orders.status: [lost]",
		},
		{
			name:     "invalid datetime",
			kind:     schema.KindOrders,
			rows:     []records.Record{validOrder(records.Record{"created_at": "01/02/2024"})},
			sentinel: schema.ErrDomain,
			contains: "invalid datetime format in orders.created_at",
		},
		{
			name:     "num_of_item must be positive",
			kind:     schema.KindOrders,
			rows:     []records.Record{validOrder(records.Record{"num_of_item": "0"})},
			sentinel: schema.ErrDomain,
			contains: "invalid numeric values in orders.num_of_item (want > 0)",
		},
		{
			name:     "sale_price must be non-negative",
			kind:     schema.KindOrderItems,
			rows:     []records.Record{validItem(records.Record{"sale_price": "-1"})},
			sentinel: schema.ErrDomain,
			contains: "invalid numeric values in order_items.sale_price (want >= 0)",
		},
		{
			name:     "non-numeric cost",
			kind:     schema.KindProducts,
			rows:     []records.Record{validProduct(records.Record{"cost": "cheap"})},
			sentinel: schema.ErrDomain,
			contains: "invalid numeric values in products.cost",
		},
		{
			name:     "empty table",
			kind:     schema.KindOrders,
			rows:     nil,
			sentinel: schema.ErrSchema,
			contains: "no data rows in orders",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := ValidateTable(c.kind, c.rows)
			if res.Err == nil {
				t.Fatalf("want error containing %q, got nil", c.contains)
			}
			if !errors.Is(res.Err, c.sentinel) {
				t.Errorf("errors.Is(%v, %v)=false", res.Err, c.sentinel)
			}
			if !strings.Contains(res.Err.Error(), c.contains) {
				t.Errorf("error=%q; want substring %q", res.Err.Error(), c.contains)
			}
		})
	}
}

// The rule chain stops at the first failure: a row that is both a duplicate
// and enum-invalid reports only the duplicate (uniqueness runs first).
func TestValidateTable_ShortCircuits(t *testing.T) {
	rows := []records.Record{
		validOrder(nil),
		validOrder(records.Record{"status": "lost"}),
	}
	res := ValidateTable(schema.KindOrders, rows)

	var dup *DuplicateKeysError
	if !errors.As(res.Err, &dup) {
		t.Fatalf("want DuplicateKeysError, got %v", res.Err)
	}
}

func TestValidateTable_DuplicateSampleCap(t *testing.T) {
	rows := []records.Record{validOrder(nil)}
	for i := 0; i < 7; i++ {
		rows = append(rows, validOrder(nil)) // 7 duplicates of o-1
	}
	res := ValidateTable(schema.KindOrders, rows)

	var dup *DuplicateKeysError
	if !errors.As(res.Err, &dup) {
		t.Fatalf("want DuplicateKeysError, got %v", res.Err)
	}
	if len(dup.Samples) != 5 {
		t.Errorf("samples=%d; want 5", len(dup.Samples))
	}
	if dup.Total != 7 {
		t.Errorf("total=%d; want 7", dup.Total)
	}
	if !strings.HasSuffix(res.Err.Error(), "...") {
		t.Errorf("error=%q; want truncation suffix", res.Err.Error())
	}
}

func TestValidateTable_NullableDatetimePasses(t *testing.T) {
	// shipped_at empty is fine; shipped_at garbage is not.
	ok := ValidateTable(schema.KindOrders, []records.Record{validOrder(records.Record{"shipped_at": nil})})
	if ok.Err != nil {
		t.Fatalf("empty nullable timestamp rejected: %v", ok.Err)
	}
	bad := ValidateTable(schema.KindOrders, []records.Record{validOrder(records.Record{"shipped_at": "soon"})})
	var dt *InvalidDatetimeError
	if !errors.As(bad.Err, &dt) {
		t.Fatalf("want InvalidDatetimeError, got %v", bad.Err)
	}
	if dt.Column != "shipped_at" {
		t.Errorf("column=%q; want shipped_at", dt.Column)
	}
}

func TestValidateTable_BareDateAccepted(t *testing.T) {
	res := ValidateTable(schema.KindOrders, []records.Record{validOrder(records.Record{"created_at": "2024-01-01"})})
	if res.Err != nil {
		t.Fatalf("bare date rejected: %v", res.Err)
	}
}

func TestValidateReference(t *testing.T) {
	items := []records.Record{
		validItem(nil),
		validItem(records.Record{"id": "i-2", "product_id": "p-404"}),
		validItem(records.Record{"id": "i-3", "product_id": "p-404"}), // same offender, reported once
	}
	products := []records.Record{validProduct(nil)}

	err := ValidateReference("order_items", items, "product_id", "products", products, "id")
	var fk *InvalidForeignKeyError
	if !errors.As(err, &fk) {
		t.Fatalf("want InvalidForeignKeyError, got %v", err)
	}
	if fk.Column != "product_id" {
		t.Errorf("column=%q; want product_id", fk.Column)
	}
	if len(fk.Samples) != 1 || fk.Samples[0] != "p-404" {
		t.Errorf("samples=%v; want [p-404]", fk.Samples)
	}
	if !errors.Is(err, schema.ErrIntegrity) {
		t.Errorf("foreign key error should wrap ErrIntegrity")
	}
}

func TestValidateReference_NullForeignKeysIgnored(t *testing.T) {
	items := []records.Record{validItem(records.Record{"product_id": nil})}
	if err := ValidateReference("order_items", items, "product_id", "products", []records.Record{validProduct(nil)}, "id"); err != nil {
		t.Fatalf("null fk should be ignored, got %v", err)
	}
}
