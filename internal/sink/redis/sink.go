// Package redis implements a Redis-backed KPI sink. Each KPI row is stored
// as a JSON value under a key derived from its grouping key, so a recompute
// of the same day is a plain overwrite.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"orderetl/internal/schema"
	"orderetl/internal/sink"
)

// Config holds Redis sink configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Sink is a Redis-backed implementation of sink.Sink.
type Sink struct {
	client *redis.Client
}

var newSink = NewSink

func init() {
	sink.Register("redis", func(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
		return newSink(ctx, Config{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	})
}

// NewSink connects to Redis and pings it to fail fast on a bad address.
func NewSink(ctx context.Context, cfg Config) (*Sink, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return &Sink{client: client}, nil
}

// CategoryKey returns the storage key for a category KPI row.
func CategoryKey(category, orderDate string) string {
	return fmt.Sprintf("category_kpi:%s:%s", category, orderDate)
}

// OrderKey returns the storage key for an order KPI row.
func OrderKey(orderDate string) string {
	return fmt.Sprintf("order_kpi:%s", orderDate)
}

// PutCategoryKPIs writes category KPI rows in one pipelined round trip.
// Decimal fields marshal as JSON strings, preserving exact values.
func (s *Sink) PutCategoryKPIs(ctx context.Context, rows []schema.CategoryKPI) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, r := range rows {
			val, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("marshal category kpi %s/%s: %w", r.Category, r.OrderDate, err)
			}
			pipe.Set(ctx, CategoryKey(r.Category, r.OrderDate), val, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: put category kpis: %w", err)
	}
	return nil
}

// PutOrderKPIs writes order KPI rows in one pipelined round trip.
func (s *Sink) PutOrderKPIs(ctx context.Context, rows []schema.OrderKPI) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, r := range rows {
			val, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("marshal order kpi %s: %w", r.OrderDate, err)
			}
			pipe.Set(ctx, OrderKey(r.OrderDate), val, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: put order kpis: %w", err)
	}
	return nil
}

// Close implements sink.Sink.
func (s *Sink) Close() { s.client.Close() }

var _ sink.Sink = (*Sink)(nil)
