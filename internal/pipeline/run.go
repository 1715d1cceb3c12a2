// Package pipeline orchestrates one full run: load the three raw tables from
// the blob store, gate them through dataset validation, transform and enrich,
// compute the daily KPIs, and hand the rows to the sink. Each stage produces
// a Result; the first failing stage aborts the run.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"orderetl/internal/blob"
	"orderetl/internal/kpi"
	"orderetl/internal/metrics"
	"orderetl/internal/parser"
	"orderetl/internal/schema"
	"orderetl/internal/sink"
	"orderetl/internal/transformer"
	"orderetl/internal/validator"
	"orderetl/pkg/records"
)

// Paths names the blob locations of the three raw tables.
type Paths struct {
	Orders     string
	OrderItems string
	Products   string
}

// Runner executes pipeline runs. Store and Parser are required; Sink may be
// nil for compute-only runs and OutputDir may be empty to skip writing
// transformed tables back.
type Runner struct {
	Job       string
	Store     blob.Store
	Parser    parser.Parser
	Inputs    Paths
	OutputDir string
	Sink      sink.Sink

	// StopAfter ends the run early after the named stage: "validate" or
	// "transform". Empty runs everything.
	StopAfter string
}

// Summary is the outcome of one run.
type Summary struct {
	RunID        string
	Fingerprint  string // xxh3 of the raw inputs, for idempotent-rerun diagnostics
	Results      []Result
	Report       validator.Report
	RowsParsed   int
	RowsSkipped  int
	CategoryKPIs int
	OrderKPIs    int
	Duration     time.Duration
}

// Lines renders every stage outcome as its operator log line, in order.
func (s *Summary) Lines() []string {
	out := make([]string, 0, len(s.Results))
	for _, r := range s.Results {
		out = append(out, r.Line())
	}
	return out
}

type rawTable struct {
	rows    []records.Record
	skipped int
}

// Run executes the whole pipeline once. The returned Summary is non-nil even
// on failure and carries the per-stage results accumulated so far.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString()}

	fail := func(step string, err error) (*Summary, error) {
		res := failure(step, err)
		sum.Results = append(sum.Results, res)
		sum.Duration = time.Since(start)
		log.Print(res.Line())
		return sum, fmt.Errorf("%s: %w", step, err)
	}

	// load
	loadStart := time.Now()
	raw, fp, err := r.load(ctx)
	metrics.RecordStep(r.Job, "load", err, time.Since(loadStart))
	if err != nil {
		return fail("load", err)
	}
	sum.Fingerprint = fp
	for _, t := range raw {
		sum.RowsParsed += len(t.rows)
		sum.RowsSkipped += t.skipped
	}
	metrics.RecordRows(r.Job, "parsed", int64(sum.RowsParsed))
	metrics.RecordRows(r.Job, "parse_skipped", int64(sum.RowsSkipped))
	res := success("load", fmt.Sprintf("loaded %d rows (%d skipped), fingerprint %s", sum.RowsParsed, sum.RowsSkipped, fp))
	sum.Results = append(sum.Results, res)
	log.Print(res.Line())

	orders, items, products := raw[0], raw[1], raw[2]

	// validate
	valStart := time.Now()
	report := validator.ValidateDataset(orders.rows, items.rows, products.rows)
	sum.Report = report
	metrics.RecordRows(r.Job, "validation_errors", int64(len(report.Errors)))
	if !report.IsValid {
		metrics.RecordStep(r.Job, "validate", fmt.Errorf("invalid"), time.Since(valStart))
		for _, e := range report.Errors {
			log.Printf("validate: %s", e)
		}
		return fail("validate", fmt.Errorf("dataset failed validation with %d errors: %w", len(report.Errors), schema.ErrSchema))
	}
	metrics.RecordStep(r.Job, "validate", nil, time.Since(valStart))
	res = success("validate", fmt.Sprintf("all %d tables passed validation", len(report.FileStats)))
	sum.Results = append(sum.Results, res)
	log.Print(res.Line())
	if r.StopAfter == "validate" {
		sum.Duration = time.Since(start)
		return sum, nil
	}

	// transform
	tfStart := time.Now()
	prodTable, ordTable, itemTable, msgs, err := r.transform(orders.rows, items.rows, products.rows)
	metrics.RecordStep(r.Job, "transform", err, time.Since(tfStart))
	if err != nil {
		return fail("transform", err)
	}
	transformed := len(ordTable.Rows) + len(itemTable.Rows) + len(prodTable.Rows)
	metrics.RecordRows(r.Job, "transformed", int64(transformed))
	for _, m := range msgs {
		res = success("transform", m)
		sum.Results = append(sum.Results, res)
		log.Print(res.Line())
	}

	if r.OutputDir != "" {
		if err := r.writeBack(ctx, ordTable, itemTable, prodTable); err != nil {
			return fail("transform", err)
		}
	}
	if r.StopAfter == "transform" {
		sum.Duration = time.Since(start)
		return sum, nil
	}

	// compute
	kpiStart := time.Now()
	catKPIs := kpi.ComputeCategoryKPIs(itemTable.Rows)
	ordKPIs := kpi.ComputeOrderKPIs(itemTable.Rows, ordTable.Rows)
	metrics.RecordStep(r.Job, "compute", nil, time.Since(kpiStart))
	metrics.RecordRows(r.Job, "kpi_rows", int64(len(catKPIs)+len(ordKPIs)))
	sum.CategoryKPIs = len(catKPIs)
	sum.OrderKPIs = len(ordKPIs)
	res = success("compute", fmt.Sprintf("computed %d category and %d order KPI rows", len(catKPIs), len(ordKPIs)))
	sum.Results = append(sum.Results, res)
	log.Print(res.Line())

	// sink
	if r.Sink != nil {
		sinkStart := time.Now()
		err := r.persist(ctx, catKPIs, ordKPIs)
		metrics.RecordStep(r.Job, "sink", err, time.Since(sinkStart))
		if err != nil {
			return fail("sink", err)
		}
		res = success("sink", fmt.Sprintf("persisted %d KPI rows", len(catKPIs)+len(ordKPIs)))
		sum.Results = append(sum.Results, res)
		log.Print(res.Line())
	}

	sum.Duration = time.Since(start)
	return sum, nil
}

// load fetches the three raw blobs concurrently and parses them. The
// fingerprint hashes the raw bytes in a fixed order so identical inputs are
// recognizable across runs.
func (r *Runner) load(ctx context.Context) ([3]rawTable, string, error) {
	paths := [3]string{r.Inputs.Orders, r.Inputs.OrderItems, r.Inputs.Products}
	var blobs [3][]byte

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			data, err := r.Store.Get(gctx, p)
			if err != nil {
				return fmt.Errorf("load %s: %w", p, err)
			}
			blobs[i] = data
			return nil
		})
	}
	var tables [3]rawTable
	if err := g.Wait(); err != nil {
		return tables, "", err
	}

	h := xxh3.New()
	for _, b := range blobs {
		h.Write(b)
	}
	fp := fmt.Sprintf("%016x", h.Sum64())

	for i, data := range blobs {
		rows, skipped, err := r.Parser.Parse(bytes.NewReader(data))
		if err != nil {
			return tables, "", fmt.Errorf("parse %s: %w", paths[i], err)
		}
		tables[i] = rawTable{rows: rows, skipped: skipped}
	}
	return tables, fp, nil
}

// transform runs the three table transforms in dependency order: products
// first, because the order-items enrichment joins against them.
func (r *Runner) transform(orders, items, products []records.Record) (*transformer.ProductsTable, *transformer.OrdersTable, *transformer.OrderItemsTable, []string, error) {
	prodTable, prodMsg, err := transformer.TransformProducts(products)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ordTable, ordMsg, err := transformer.TransformOrders(orders)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	itemTable, itemMsg, err := transformer.TransformOrderItems(items, prodTable)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return prodTable, ordTable, itemTable, []string{prodMsg, ordMsg, itemMsg}, nil
}

func (r *Runner) writeBack(ctx context.Context, orders *transformer.OrdersTable, items *transformer.OrderItemsTable, products *transformer.ProductsTable) error {
	encode := func(name string, enc func(*bytes.Buffer) error) error {
		var buf bytes.Buffer
		if err := enc(&buf); err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		path := r.OutputDir + "/" + name
		if err := r.Store.Put(ctx, path, buf.Bytes()); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	}
	if err := encode("orders.csv", func(b *bytes.Buffer) error { return orders.EncodeCSV(b) }); err != nil {
		return err
	}
	if err := encode("order_items.csv", func(b *bytes.Buffer) error { return items.EncodeCSV(b) }); err != nil {
		return err
	}
	return encode("products.csv", func(b *bytes.Buffer) error { return products.EncodeCSV(b) })
}

func (r *Runner) persist(ctx context.Context, cat []schema.CategoryKPI, ord []schema.OrderKPI) error {
	if err := r.Sink.PutCategoryKPIs(ctx, cat); err != nil {
		return fmt.Errorf("put category kpis: %w", err)
	}
	if err := r.Sink.PutOrderKPIs(ctx, ord); err != nil {
		return fmt.Errorf("put order kpis: %w", err)
	}
	return nil
}
