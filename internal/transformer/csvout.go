package transformer

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"orderetl/internal/schema"
)

// EncodeCSV writes the transformed orders as CSV with a header row. Nil
// timestamps encode as empty cells.
func (t *OrdersTable) EncodeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"order_id", "user_id", "status", "created_at", "order_date", "num_of_item", "returned_at", "transformed_at"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range t.Rows {
		rec := []string{
			r.OrderID,
			r.UserID,
			r.Status,
			timeCell(r.CreatedAt),
			r.OrderDate,
			strconv.FormatInt(r.NumOfItem, 10),
			timeCell(r.ReturnedAt),
			t.TransformedAt,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeCSV writes the transformed order items as CSV with a header row.
func (t *OrderItemsTable) EncodeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"order_id", "user_id", "product_id", "status", "created_at", "order_date", "sale_price", "category", "returned_at", "transformed_at"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range t.Rows {
		rec := []string{
			r.OrderID,
			r.UserID,
			r.ProductID,
			r.Status,
			timeCell(r.CreatedAt),
			r.OrderDate,
			r.SalePrice.String(),
			r.Category,
			timeCell(r.ReturnedAt),
			t.TransformedAt,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeCSV writes the transformed products as CSV with a header row.
func (t *ProductsTable) EncodeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "category", "transformed_at"}); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := cw.Write([]string{r.ID, r.Category, t.TransformedAt}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func timeCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(schema.TimeLayout)
}
