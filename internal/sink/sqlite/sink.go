// Package sqlite implements a SQLite-backed KPI sink using database/sql.
// Rows go in via INSERT OR REPLACE inside a single transaction per call, so
// a rerun over the same dates replaces those dates atomically.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"orderetl/internal/schema"
	"orderetl/internal/sink"
)

// Config holds SQLite sink configuration.
type Config struct {
	DSN           string
	CategoryTable string
	OrderTable    string
}

// Sink is a SQLite-backed implementation of sink.Sink.
type Sink struct {
	db  *sql.DB
	cfg Config
}

// newSink is a test hook that points to NewSink by default.
var newSink = NewSink

func init() {
	sink.Register("sqlite", func(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
		return newSink(ctx, Config{
			DSN:           cfg.DSN,
			CategoryTable: cfg.CategoryTable,
			OrderTable:    cfg.OrderTable,
		})
	})
}

// NewSink opens the database, pings it to fail fast on a bad DSN, and
// ensures the destination tables exist.
func NewSink(ctx context.Context, cfg Config) (*Sink, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if cfg.CategoryTable == "" {
		cfg.CategoryTable = "category_kpis"
	}
	if cfg.OrderTable == "" {
		cfg.OrderTable = "order_kpis"
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	s := &Sink{db: db, cfg: cfg}
	if err := s.ensureTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureTables(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			category TEXT NOT NULL,
			order_date TEXT NOT NULL,
			daily_revenue TEXT NOT NULL,
			avg_order_value TEXT NOT NULL,
			avg_return_rate TEXT NOT NULL,
			computed_at TEXT NOT NULL,
			PRIMARY KEY (category, order_date)
		)`, s.cfg.CategoryTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			order_date TEXT NOT NULL PRIMARY KEY,
			total_orders INTEGER NOT NULL,
			total_items_sold INTEGER NOT NULL,
			total_revenue TEXT NOT NULL,
			unique_customers INTEGER NOT NULL,
			return_rate TEXT NOT NULL,
			computed_at TEXT NOT NULL
		)`, s.cfg.OrderTable),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: create table: %w", err)
		}
	}
	return nil
}

// PutCategoryKPIs upserts category KPI rows. Decimal columns are stored as
// their exact string form.
func (s *Sink) PutCategoryKPIs(ctx context.Context, rows []schema.CategoryKPI) error {
	if len(rows) == 0 {
		return nil
	}
	stmtSQL := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (category, order_date, daily_revenue, avg_order_value, avg_return_rate, computed_at) VALUES (?, ?, ?, ?, ?, ?)",
		s.cfg.CategoryTable,
	)
	return s.inTx(ctx, stmtSQL, len(rows), func(stmt *sql.Stmt) error {
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx,
				r.Category, r.OrderDate,
				r.DailyRevenue.String(), r.AvgOrderValue.String(), r.AvgReturnRate.String(),
				r.ComputedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutOrderKPIs upserts order KPI rows.
func (s *Sink) PutOrderKPIs(ctx context.Context, rows []schema.OrderKPI) error {
	if len(rows) == 0 {
		return nil
	}
	stmtSQL := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (order_date, total_orders, total_items_sold, total_revenue, unique_customers, return_rate, computed_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		s.cfg.OrderTable,
	)
	return s.inTx(ctx, stmtSQL, len(rows), func(stmt *sql.Stmt) error {
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx,
				r.OrderDate, r.TotalOrders, r.TotalItemsSold,
				r.TotalRevenue.String(), r.UniqueCustomers, r.ReturnRate.String(),
				r.ComputedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Sink) inTx(ctx context.Context, stmtSQL string, n int, exec func(*sql.Stmt) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()
	if err := exec(stmt); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: upsert %d rows: %w", n, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Close implements sink.Sink.
func (s *Sink) Close() { s.db.Close() }

var _ sink.Sink = (*Sink)(nil)
