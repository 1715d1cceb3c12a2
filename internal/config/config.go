// Package config defines the JSON-serializable configuration model for the
// order KPI pipeline. It is intentionally small and explicit so that run
// definitions can be loaded from disk and passed through the program without
// additional glue code; decoding is performed by the standard library, with a
// light Options helper for typed access to free-form bags.
//
// Example (trimmed):
//
//	{
//	  "job":    "daily-orders",
//	  "blob":   { "kind": "local", "local": { "root": "/data" } },
//	  "inputs": { "orders": "raw/orders.csv", "order_items": "raw/order_items.csv", "products": "raw/products.csv" },
//	  "output": { "dir": "transformed" },
//	  "sink":   { "kind": "redis", "redis": { "addr": "localhost:6379" } }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Pipeline describes one pipeline run definition. It is the top-level object
// decoded from a config file.
type Pipeline struct {
	// Job identifies the run for metrics labeling and log lines.
	Job string `json:"job"`

	// Blob selects the object store the raw tables are read from and
	// transformed tables are written back to.
	Blob Blob `json:"blob"`

	// Inputs names the blob paths of the three raw tables.
	Inputs Inputs `json:"inputs"`

	// Parser is a free-form bag of CSV parser settings. Typical keys:
	// has_header (bool), comma (string), trim_space (bool),
	// header_map (object).
	Parser Options `json:"parser"`

	// Output controls write-back of transformed tables. An empty dir
	// disables it.
	Output Output `json:"output"`

	// Sink selects where computed KPI rows are persisted.
	Sink Sink `json:"sink"`

	// Metrics selects the metrics backend.
	Metrics Metrics `json:"metrics"`
}

// Blob identifies the object store backing a run.
type Blob struct {
	// Kind selects the store implementation: "local" or "http".
	Kind string `json:"kind"`

	Local BlobLocal `json:"local"`
	HTTP  BlobHTTP  `json:"http"`
}

// BlobLocal holds options for the "local" blob kind.
type BlobLocal struct {
	// Root is the directory all blob paths are resolved against.
	Root string `json:"root"`
}

// BlobHTTP holds options for the "http" blob kind.
type BlobHTTP struct {
	BaseURL    string `json:"base_url"`
	MaxRetries int    `json:"max_retries"`
}

// Inputs names the raw table blobs for one run.
type Inputs struct {
	Orders     string `json:"orders"`
	OrderItems string `json:"order_items"`
	Products   string `json:"products"`
}

// Output controls persistence of transformed tables back to the blob store.
type Output struct {
	// Dir is the blob path prefix the transformed CSVs are written under,
	// e.g. "transformed" produces "transformed/orders.csv". Empty disables
	// write-back.
	Dir string `json:"dir"`
}

// Sink selects the KPI destination.
type Sink struct {
	// Kind selects the sink backend: "redis", "sqlite", or "postgres".
	// Empty disables KPI persistence (compute-only runs).
	Kind string `json:"kind"`

	// DSN is the connection string for database backends.
	DSN string `json:"dsn"`

	Redis SinkRedis `json:"redis"`

	// CategoryTable and OrderTable override the destination table names for
	// database backends.
	CategoryTable string `json:"category_table"`
	OrderTable    string `json:"order_table"`
}

// SinkRedis holds options for the "redis" sink kind.
type SinkRedis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// Metrics selects and configures the metrics backend.
type Metrics struct {
	// Backend is "none", "prometheus", or "datadog". Empty means none.
	Backend string `json:"backend"`

	// PushgatewayURL is required for the prometheus backend.
	PushgatewayURL string `json:"pushgateway_url"`

	// StatsdAddr is the DogStatsD address for the datadog backend.
	StatsdAddr string `json:"statsd_addr"`
}

// Load reads and decodes a pipeline config file.
func Load(path string) (Pipeline, error) {
	var p Pipeline
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decode config %s: %w", path, err)
	}
	return p, nil
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing a configuration library. It performs only minimal type
// coercion and returns provided defaults when a key is absent or of an
// unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a
// string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// so this accepts float64 and casts.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def when missing
// or empty. Used for single-character settings such as the CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// with string values. Non-string values are ignored.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// UnmarshalJSON decodes a missing or null options object to a non-nil, empty
// map so call sites need no nil checks.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
