// Package sink defines the key-value destination for computed KPI rows and a
// factory registry for its backends. Writes are upserts keyed by
// (category, order_date) and (order_date): recomputing a day replaces its
// rows instead of appending.
package sink

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"orderetl/internal/schema"
)

// Sink persists KPI rows. Implementations must overwrite rows that share a
// key with an incoming row.
type Sink interface {
	PutCategoryKPIs(ctx context.Context, rows []schema.CategoryKPI) error
	PutOrderKPIs(ctx context.Context, rows []schema.OrderKPI) error
	Close()
}

// Config carries everything any backend needs; each backend reads the
// fields relevant to it.
type Config struct {
	Kind string

	// DSN is the connection string for database backends.
	DSN string

	// Redis connection settings.
	Addr     string
	Password string
	DB       int

	// Destination table names for database backends. Backends apply
	// defaults when empty.
	CategoryTable string
	OrderTable    string
}

// Factory constructs a backend from its config.
type Factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Backends call it from init;
// importing sink/all registers every built-in backend.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens the backend named by cfg.Kind.
func New(ctx context.Context, cfg Config) (Sink, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown sink kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend names, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
