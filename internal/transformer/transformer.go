// Package transformer converts validated raw rows into the typed, enriched
// tables consumed by KPI computation.
//
// Transformation is deliberately more forgiving than validation: a timestamp
// the validator would reject is coerced to nil here rather than failing the
// run, so a table that passed validation always transforms. Numeric casts are
// the exception; a sale_price or num_of_item that does not parse aborts the
// table because every downstream aggregate depends on it.
package transformer

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	csvparser "orderetl/internal/parser/csv"
	"orderetl/internal/schema"
	"orderetl/pkg/records"
)

// nowFn is swapped in tests to pin the transformed_at stamp.
var nowFn = time.Now

func stamp() string { return nowFn().UTC().Format(time.RFC3339) }

// Table is the common surface of the three transformed tables, used by
// callers that dispatch on an explicit kind via Transform.
type Table interface {
	EncodeCSV(w io.Writer) error
	Len() int
}

// Transform dispatches to the kind-specific transform. products is required
// only for KindOrderItems; the other kinds ignore it.
func Transform(kind schema.Kind, rows []records.Record, products *ProductsTable) (Table, string, error) {
	switch kind {
	case schema.KindOrders:
		return wrap(TransformOrders(rows))
	case schema.KindOrderItems:
		return wrap(TransformOrderItems(rows, products))
	case schema.KindProducts:
		return wrap(TransformProducts(rows))
	default:
		return nil, "", fmt.Errorf("unknown table kind %q: %w", kind, schema.ErrSchema)
	}
}

func wrap[T Table](t T, msg string, err error) (Table, string, error) {
	if err != nil {
		return nil, "", err
	}
	return t, msg, nil
}

// OrdersTable is the transformed orders set. TransformedAt is stamped once
// per run and repeated on every persisted row.
type OrdersTable struct {
	Rows          []schema.Order
	TransformedAt string
}

// Len returns the row count.
func (t *OrdersTable) Len() int { return len(t.Rows) }

// OrderItemsTable is the transformed order items set after the products
// category join.
type OrderItemsTable struct {
	Rows          []schema.OrderItem
	TransformedAt string
}

// Len returns the row count.
func (t *OrderItemsTable) Len() int { return len(t.Rows) }

// ProductsTable is the transformed products set, reduced to the join columns.
type ProductsTable struct {
	Rows          []schema.Product
	TransformedAt string
}

// Len returns the row count.
func (t *ProductsTable) Len() int { return len(t.Rows) }

// TransformOrders projects raw order rows onto the typed model, coercing
// timestamps leniently and deriving order_date from created_at. The returned
// message is the single operator line for the step.
func TransformOrders(rows []records.Record) (*OrdersTable, string, error) {
	out := &OrdersTable{
		Rows:          make([]schema.Order, 0, len(rows)),
		TransformedAt: stamp(),
	}
	for i, raw := range rows {
		row := foldColumns(raw)
		n, err := parseCount(row.String("num_of_item"))
		if err != nil {
			return nil, "", fmt.Errorf("orders row %d: num_of_item %q: %w", i, row.String("num_of_item"), schema.ErrDomain)
		}
		created := coerceTime(row, "created_at")
		out.Rows = append(out.Rows, schema.Order{
			OrderID:    row.String("order_id"),
			UserID:     row.String("user_id"),
			Status:     row.String("status"),
			CreatedAt:  created,
			OrderDate:  dateOf(created),
			NumOfItem:  n,
			ReturnedAt: coerceTime(row, "returned_at"),
		})
	}
	return out, "Orders transformation completed", nil
}

// TransformProducts keeps only the columns the order-items join needs.
func TransformProducts(rows []records.Record) (*ProductsTable, string, error) {
	out := &ProductsTable{
		Rows:          make([]schema.Product, 0, len(rows)),
		TransformedAt: stamp(),
	}
	for _, raw := range rows {
		row := foldColumns(raw)
		out.Rows = append(out.Rows, schema.Product{
			ID:       row.String("id"),
			Category: row.String("category"),
		})
	}
	return out, "Products transformation completed", nil
}

// TransformOrderItems projects raw order item rows and enriches each with the
// product category via a left join on product_id. Items whose product is
// missing from the reference keep an empty category rather than being
// dropped. A nil products table is a hard dependency failure.
func TransformOrderItems(rows []records.Record, products *ProductsTable) (*OrderItemsTable, string, error) {
	if products == nil {
		return nil, "", &MissingDependencyError{Table: "order_items", Dependency: "products"}
	}
	categories := make(map[string]string, len(products.Rows))
	for _, p := range products.Rows {
		if _, seen := categories[p.ID]; !seen {
			categories[p.ID] = p.Category
		}
	}
	out := &OrderItemsTable{
		Rows:          make([]schema.OrderItem, 0, len(rows)),
		TransformedAt: stamp(),
	}
	for i, raw := range rows {
		row := foldColumns(raw)
		price, err := decimal.NewFromString(row.String("sale_price"))
		if err != nil {
			return nil, "", fmt.Errorf("order_items row %d: sale_price %q: %w", i, row.String("sale_price"), schema.ErrDomain)
		}
		created := coerceTime(row, "created_at")
		out.Rows = append(out.Rows, schema.OrderItem{
			OrderID:    row.String("order_id"),
			UserID:     row.String("user_id"),
			ProductID:  row.String("product_id"),
			Status:     row.String("status"),
			CreatedAt:  created,
			OrderDate:  dateOf(created),
			SalePrice:  price,
			Category:   categories[row.String("product_id")],
			ReturnedAt: coerceTime(row, "returned_at"),
		})
	}
	return out, "Order items transformation completed", nil
}

// foldColumns re-canonicalizes row keys so rows built outside the CSV parser
// (tests, ad-hoc callers) get the same column names parsed files do.
func foldColumns(row records.Record) records.Record {
	for k := range row {
		if folded := csvparser.CanonicalName(k); folded != k {
			out := make(records.Record, len(row))
			for kk, vv := range row {
				out[csvparser.CanonicalName(kk)] = vv
			}
			return out
		}
	}
	return row
}

func parseCount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func dateOf(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(schema.DateLayout)
}
