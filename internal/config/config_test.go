package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const sampleJSON = `{
  "job": "daily-orders",
  "blob": { "kind": "local", "local": { "root": "/data" } },
  "inputs": {
    "orders": "raw/orders.csv",
    "order_items": "raw/order_items.csv",
    "products": "raw/products.csv"
  },
  "parser": { "has_header": true, "trim_space": true, "comma": ";" },
  "output": { "dir": "transformed" },
  "sink": { "kind": "redis", "redis": { "addr": "localhost:6379", "db": 2 } },
  "metrics": { "backend": "prometheus", "pushgateway_url": "http://pushgateway:9091" }
}`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Job != "daily-orders" {
		t.Fatalf("job = %q", p.Job)
	}
	if p.Blob.Kind != "local" || p.Blob.Local.Root != "/data" {
		t.Fatalf("blob = %+v", p.Blob)
	}
	if p.Inputs.OrderItems != "raw/order_items.csv" {
		t.Fatalf("inputs = %+v", p.Inputs)
	}
	if p.Sink.Redis.DB != 2 {
		t.Fatalf("sink = %+v", p.Sink)
	}
	if !p.Parser.Bool("has_header", false) {
		t.Fatal("parser.has_header = false")
	}
	if got := p.Parser.Rune("comma", ','); got != ';' {
		t.Fatalf("parser.comma = %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("Load succeeded for missing file")
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{
		"s":   "x",
		"b":   true,
		"n":   float64(7),
		"map": map[string]any{"a": "b", "skip": 1},
	}
	if got := o.String("s", "d"); got != "x" {
		t.Fatalf("String = %q", got)
	}
	if got := o.String("missing", "d"); got != "d" {
		t.Fatalf("String default = %q", got)
	}
	if got := o.String("b", "d"); got != "d" {
		t.Fatalf("String wrong type = %q", got)
	}
	if !o.Bool("b", false) {
		t.Fatal("Bool = false")
	}
	if got := o.Int("n", 0); got != 7 {
		t.Fatalf("Int = %d", got)
	}
	if got := o.Int("missing", 3); got != 3 {
		t.Fatalf("Int default = %d", got)
	}
	m := o.StringMap("map")
	if len(m) != 1 || m["a"] != "b" {
		t.Fatalf("StringMap = %v", m)
	}
	if got := o.Rune("missing", ','); got != ',' {
		t.Fatalf("Rune default = %q", got)
	}
}

func TestOptionsNullDecodestoEmpty(t *testing.T) {
	var p Pipeline
	if err := json.Unmarshal([]byte(`{"job":"j","parser":null}`), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Parser == nil {
		t.Fatal("Parser = nil, want empty map")
	}
	if got := p.Parser.Bool("has_header", true); !got {
		t.Fatalf("default lookup on empty options = %v", got)
	}
}
