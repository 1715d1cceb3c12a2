// Package schema defines the table kinds, validation contracts, and typed row
// models for the order KPI pipeline.
package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the strict timestamp format accepted by validation.
const TimeLayout = "2006-01-02T15:04:05"

// DateLayout is the calendar-date format used for order_date bucketing and
// KPI grouping keys.
const DateLayout = "2006-01-02"

// Kind identifies one of the three input tables. It is supplied explicitly by
// the caller; column sniffing exists only as a CLI convenience (see
// transformer.DetectKind).
type Kind string

const (
	KindOrders     Kind = "orders"
	KindOrderItems Kind = "order_items"
	KindProducts   Kind = "products"
)

// ValidStatuses is the closed status enum shared by orders and order items.
var ValidStatuses = []string{"pending", "shipped", "delivered", "returned"}

// StatusReturned is the status value counted by return-rate metrics.
const StatusReturned = "returned"

// Order is a transformed order row. The field set is the fixed projection
// kept for KPI computation; raw-only columns (shipped_at, delivered_at) are
// dropped during transformation.
type Order struct {
	OrderID    string     `db:"order_id" json:"order_id"`
	UserID     string     `db:"user_id" json:"user_id"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  *time.Time `db:"created_at" json:"created_at"`
	OrderDate  string     `db:"order_date" json:"order_date"`
	NumOfItem  int64      `db:"num_of_item" json:"num_of_item"`
	ReturnedAt *time.Time `db:"returned_at" json:"returned_at"`
}

// OrderItem is a transformed order item row, enriched with the product
// category via the products join.
type OrderItem struct {
	OrderID    string          `db:"order_id" json:"order_id"`
	UserID     string          `db:"user_id" json:"user_id"`
	ProductID  string          `db:"product_id" json:"product_id"`
	Status     string          `db:"status" json:"status"`
	CreatedAt  *time.Time      `db:"created_at" json:"created_at"`
	OrderDate  string          `db:"order_date" json:"order_date"`
	SalePrice  decimal.Decimal `db:"sale_price" json:"sale_price"`
	Category   string          `db:"category" json:"category"`
	ReturnedAt *time.Time      `db:"returned_at" json:"returned_at"`
}

// Product is a transformed product row, reduced to the columns the
// order-items enrichment join needs.
type Product struct {
	ID       string `db:"id" json:"id"`
	Category string `db:"category" json:"category"`
}

// CategoryKPI is a daily aggregate keyed by (category, order_date).
// Recomputing for the same key overwrites the previous row in the sink.
type CategoryKPI struct {
	Category      string          `db:"category" json:"category"`
	OrderDate     string          `db:"order_date" json:"order_date"`
	DailyRevenue  decimal.Decimal `db:"daily_revenue" json:"daily_revenue"`
	AvgOrderValue decimal.Decimal `db:"avg_order_value" json:"avg_order_value"`
	AvgReturnRate decimal.Decimal `db:"avg_return_rate" json:"avg_return_rate"`
	ComputedAt    string          `db:"computed_at" json:"computed_at"`
}

// OrderKPI is a daily aggregate keyed by order_date.
type OrderKPI struct {
	OrderDate       string          `db:"order_date" json:"order_date"`
	TotalOrders     int64           `db:"total_orders" json:"total_orders"`
	TotalItemsSold  int64           `db:"total_items_sold" json:"total_items_sold"`
	TotalRevenue    decimal.Decimal `db:"total_revenue" json:"total_revenue"`
	UniqueCustomers int64           `db:"unique_customers" json:"unique_customers"`
	ReturnRate      decimal.Decimal `db:"return_rate" json:"return_rate"`
	ComputedAt      string          `db:"computed_at" json:"computed_at"`
}
