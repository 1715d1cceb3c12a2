// Package postgres implements a Postgres-backed KPI sink using pgx v5. Rows
// are written with INSERT ... ON CONFLICT DO UPDATE batched over one
// connection, keyed the same way the KPI rows are.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"orderetl/internal/schema"
	"orderetl/internal/sink"
)

// Config holds Postgres sink configuration.
type Config struct {
	DSN           string
	CategoryTable string
	OrderTable    string
}

// Sink is a Postgres-backed implementation of sink.Sink.
type Sink struct {
	pool *pgxpool.Pool
	cfg  Config
}

var newSink = NewSink

func init() {
	sink.Register("postgres", func(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
		return newSink(ctx, Config{
			DSN:           cfg.DSN,
			CategoryTable: cfg.CategoryTable,
			OrderTable:    cfg.OrderTable,
		})
	})
}

// NewSink opens a pgx pool and ensures the destination tables exist.
func NewSink(ctx context.Context, cfg Config) (*Sink, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	if cfg.CategoryTable == "" {
		cfg.CategoryTable = "category_kpis"
	}
	if cfg.OrderTable == "" {
		cfg.OrderTable = "order_kpis"
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	s := &Sink{pool: pool, cfg: cfg}
	if err := s.ensureTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureTables(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			category text NOT NULL,
			order_date date NOT NULL,
			daily_revenue numeric NOT NULL,
			avg_order_value numeric NOT NULL,
			avg_return_rate numeric NOT NULL,
			computed_at timestamptz NOT NULL,
			PRIMARY KEY (category, order_date)
		)`, s.cfg.CategoryTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			order_date date NOT NULL PRIMARY KEY,
			total_orders bigint NOT NULL,
			total_items_sold bigint NOT NULL,
			total_revenue numeric NOT NULL,
			unique_customers bigint NOT NULL,
			return_rate numeric NOT NULL,
			computed_at timestamptz NOT NULL
		)`, s.cfg.OrderTable),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: create table: %w", err)
		}
	}
	return nil
}

// PutCategoryKPIs upserts category KPI rows. Decimals are bound as their
// exact string form so numeric columns never see binary-float artifacts.
func (s *Sink) PutCategoryKPIs(ctx context.Context, rows []schema.CategoryKPI) error {
	if len(rows) == 0 {
		return nil
	}
	stmtSQL := fmt.Sprintf(`INSERT INTO %s
		(category, order_date, daily_revenue, avg_order_value, avg_return_rate, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (category, order_date) DO UPDATE SET
			daily_revenue = EXCLUDED.daily_revenue,
			avg_order_value = EXCLUDED.avg_order_value,
			avg_return_rate = EXCLUDED.avg_return_rate,
			computed_at = EXCLUDED.computed_at`, s.cfg.CategoryTable)

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(stmtSQL,
			r.Category, r.OrderDate,
			r.DailyRevenue.String(), r.AvgOrderValue.String(), r.AvgReturnRate.String(),
			r.ComputedAt,
		)
	}
	return s.sendBatch(ctx, batch)
}

// PutOrderKPIs upserts order KPI rows.
func (s *Sink) PutOrderKPIs(ctx context.Context, rows []schema.OrderKPI) error {
	if len(rows) == 0 {
		return nil
	}
	stmtSQL := fmt.Sprintf(`INSERT INTO %s
		(order_date, total_orders, total_items_sold, total_revenue, unique_customers, return_rate, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_date) DO UPDATE SET
			total_orders = EXCLUDED.total_orders,
			total_items_sold = EXCLUDED.total_items_sold,
			total_revenue = EXCLUDED.total_revenue,
			unique_customers = EXCLUDED.unique_customers,
			return_rate = EXCLUDED.return_rate,
			computed_at = EXCLUDED.computed_at`, s.cfg.OrderTable)

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(stmtSQL,
			r.OrderDate, r.TotalOrders, r.TotalItemsSold,
			r.TotalRevenue.String(), r.UniqueCustomers, r.ReturnRate.String(),
			r.ComputedAt,
		)
	}
	return s.sendBatch(ctx, batch)
}

func (s *Sink) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert row %d: %w", i, err)
		}
	}
	return nil
}

// Close implements sink.Sink.
func (s *Sink) Close() { s.pool.Close() }

var _ sink.Sink = (*Sink)(nil)
