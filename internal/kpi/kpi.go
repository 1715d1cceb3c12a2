// Package kpi computes the daily aggregates persisted to the KPI sink.
//
// All money math runs on exact decimals. Row order in the inputs is
// irrelevant; outputs are sorted by group key so repeated runs over the same
// data produce byte-identical values apart from the computed_at stamp.
package kpi

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"orderetl/internal/schema"
)

// nowFn is swapped in tests to pin the computed_at stamp.
var nowFn = time.Now

func stamp() string { return nowFn().UTC().Format(time.RFC3339) }

var hundred = decimal.NewFromInt(100)

// rate returns 100*part/total as a percentage. A zero total yields zero, not
// an error; empty groups must degrade, never abort a run.
func rate(part, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(total))
}

type categoryKey struct {
	category  string
	orderDate string
}

type categoryAcc struct {
	revenue  decimal.Decimal
	rows     int64
	returned int64
}

// ComputeCategoryKPIs groups order items by (category, order_date) and emits
// one row per observed group. Items without an order date (created_at never
// parsed) have no bucket and are skipped.
func ComputeCategoryKPIs(items []schema.OrderItem) []schema.CategoryKPI {
	computed := stamp()
	groups := make(map[categoryKey]*categoryAcc)
	for _, it := range items {
		if it.OrderDate == "" {
			continue
		}
		k := categoryKey{category: it.Category, orderDate: it.OrderDate}
		acc := groups[k]
		if acc == nil {
			acc = &categoryAcc{}
			groups[k] = acc
		}
		acc.revenue = acc.revenue.Add(it.SalePrice)
		acc.rows++
		if it.Status == schema.StatusReturned {
			acc.returned++
		}
	}

	out := make([]schema.CategoryKPI, 0, len(groups))
	for k, acc := range groups {
		out = append(out, schema.CategoryKPI{
			Category:      k.category,
			OrderDate:     k.orderDate,
			DailyRevenue:  acc.revenue,
			AvgOrderValue: acc.revenue.Div(decimal.NewFromInt(acc.rows)),
			AvgReturnRate: rate(acc.returned, acc.rows),
			ComputedAt:    computed,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].OrderDate < out[j].OrderDate
	})
	return out
}

type orderAcc struct {
	orderIDs  map[string]struct{}
	itemsSold int64
	returned  int64
}

type itemAcc struct {
	revenue   decimal.Decimal
	customers map[string]struct{}
}

// ComputeOrderKPIs aggregates orders and order items independently by
// order_date and outer-joins the two groupings. A date present on only one
// side still yields a row with the other side's fields zeroed.
func ComputeOrderKPIs(items []schema.OrderItem, orders []schema.Order) []schema.OrderKPI {
	computed := stamp()

	byOrderDate := make(map[string]*orderAcc)
	for _, o := range orders {
		if o.OrderDate == "" {
			continue
		}
		acc := byOrderDate[o.OrderDate]
		if acc == nil {
			acc = &orderAcc{orderIDs: make(map[string]struct{})}
			byOrderDate[o.OrderDate] = acc
		}
		acc.orderIDs[o.OrderID] = struct{}{}
		acc.itemsSold += o.NumOfItem
		if o.Status == schema.StatusReturned {
			acc.returned++
		}
	}

	byItemDate := make(map[string]*itemAcc)
	for _, it := range items {
		if it.OrderDate == "" {
			continue
		}
		acc := byItemDate[it.OrderDate]
		if acc == nil {
			acc = &itemAcc{customers: make(map[string]struct{})}
			byItemDate[it.OrderDate] = acc
		}
		acc.revenue = acc.revenue.Add(it.SalePrice)
		acc.customers[it.UserID] = struct{}{}
	}

	dates := make(map[string]struct{}, len(byOrderDate)+len(byItemDate))
	for d := range byOrderDate {
		dates[d] = struct{}{}
	}
	for d := range byItemDate {
		dates[d] = struct{}{}
	}

	out := make([]schema.OrderKPI, 0, len(dates))
	for d := range dates {
		row := schema.OrderKPI{
			OrderDate:    d,
			TotalRevenue: decimal.Zero,
			ReturnRate:   decimal.Zero,
			ComputedAt:   computed,
		}
		if acc := byOrderDate[d]; acc != nil {
			row.TotalOrders = int64(len(acc.orderIDs))
			row.TotalItemsSold = acc.itemsSold
			row.ReturnRate = rate(acc.returned, row.TotalOrders)
		}
		if acc := byItemDate[d]; acc != nil {
			row.TotalRevenue = acc.revenue
			row.UniqueCustomers = int64(len(acc.customers))
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate < out[j].OrderDate })
	return out
}
