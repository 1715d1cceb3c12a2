// Command orderetl runs the order KPI pipeline: it loads the three raw CSV
// tables from the configured blob store, validates them as a dataset,
// transforms and enriches them, computes the daily KPIs, and persists the
// rows to the configured sink.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"orderetl/internal/blob"
	"orderetl/internal/config"
	"orderetl/internal/metrics"
	"orderetl/internal/metrics/datadog"
	"orderetl/internal/metrics/prompush"
	csvparser "orderetl/internal/parser/csv"
	"orderetl/internal/pipeline"
	"orderetl/internal/sink"

	// register all sink backends with the factory; the config selects one at
	// runtime.
	_ "orderetl/internal/sink/all"
)

func main() {
	var (
		cfgPath           string
		step              string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validateCfg       bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipeline.json", "pipeline config JSON path")
	flag.StringVar(&step, "step", "all", "how far to run: validate, transform, kpis, or all")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend (none, prometheus, datadog); overrides config")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL and config)")
	flag.BoolVar(&validateCfg, "validate-config", false, "lint the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	p, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("configuration is invalid: %s", cfgPath)
		os.Exit(1)
	}
	if validateCfg {
		log.Printf("configuration is valid: %s", cfgPath)
		os.Exit(0)
	}

	stopAfter, err := stopAfterFor(step)
	if err != nil {
		fatalf("%v", err)
	}

	setupMetrics(p, metricsBackendFlg, pushGatewayURLFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()

	store, err := newStore(p.Blob)
	if err != nil {
		fatalf("%v", err)
	}

	var kpiSink sink.Sink
	if stopAfter == "" && p.Sink.Kind != "" {
		kpiSink, err = sink.New(ctx, sink.Config{
			Kind:          p.Sink.Kind,
			DSN:           p.Sink.DSN,
			Addr:          p.Sink.Redis.Addr,
			Password:      p.Sink.Redis.Password,
			DB:            p.Sink.Redis.DB,
			CategoryTable: p.Sink.CategoryTable,
			OrderTable:    p.Sink.OrderTable,
		})
		if err != nil {
			fatalf("open sink: %v", err)
		}
		defer kpiSink.Close()
	}

	runner := &pipeline.Runner{
		Job:    p.Job,
		Store:  store,
		Parser: newParser(p.Parser),
		Inputs: pipeline.Paths{
			Orders:     p.Inputs.Orders,
			OrderItems: p.Inputs.OrderItems,
			Products:   p.Inputs.Products,
		},
		OutputDir: p.Output.Dir,
		Sink:      kpiSink,
		StopAfter: stopAfter,
	}

	start := time.Now()
	sum, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("run %s: %v", sum.RunID, err)
	}
	if *verbose {
		log.Printf("run %s: fingerprint=%s parsed=%d skipped=%d category_kpis=%d order_kpis=%d in %s",
			sum.RunID, sum.Fingerprint, sum.RowsParsed, sum.RowsSkipped,
			sum.CategoryKPIs, sum.OrderKPIs, time.Since(start).Truncate(time.Millisecond))
	}
}

// stopAfterFor maps the -step flag onto the runner's StopAfter setting.
func stopAfterFor(step string) (string, error) {
	switch step {
	case "validate", "transform":
		return step, nil
	case "all", "kpis", "":
		return "", nil
	default:
		return "", fmt.Errorf("unknown -step %q (want validate, transform, kpis, or all)", step)
	}
}

func newStore(b config.Blob) (blob.Store, error) {
	switch b.Kind {
	case "local":
		return blob.NewLocal(b.Local.Root), nil
	case "http":
		return blob.NewHTTP(blob.HTTPConfig{
			BaseURL:    b.HTTP.BaseURL,
			MaxRetries: b.HTTP.MaxRetries,
		}), nil
	default:
		return nil, fmt.Errorf("unknown blob kind %q", b.Kind)
	}
}

func newParser(opts config.Options) *csvparser.Parser {
	return csvparser.NewParser(csvparser.Options{
		HasHeader: opts.Bool("has_header", true),
		Comma:     opts.Rune("comma", ','),
		TrimSpace: opts.Bool("trim_space", true),
		HeaderMap: opts.StringMap("header_map"),
	})
}

// setupMetrics installs the metrics backend: flag → config → env, with the
// nop backend as the fallback when nothing is configured or init fails.
func setupMetrics(p config.Pipeline, backendFlg, gatewayFlg string, verbose bool) {
	backendName := backendFlg
	if backendName == "" {
		backendName = p.Metrics.Backend
	}
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	switch backendName {
	case "prometheus", "pushgateway":
		gwURL := gatewayFlg
		if gwURL == "" {
			gwURL = p.Metrics.PushgatewayURL
		}
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(p.Job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
			return
		}
		if verbose {
			log.Printf("metrics: backend=prometheus url=%s job=%s", gwURL, p.Job)
		}
		metrics.SetBackend(b)

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:      p.Metrics.StatsdAddr,
			Namespace: "orderetl.",
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
