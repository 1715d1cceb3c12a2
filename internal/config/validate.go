// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that callers can surface in the CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced but does not
	// block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single lint finding. Path is a dotted path into the
// config (e.g. "sink.kind"); Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error where needed.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is of error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline; callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateBlob(p.Blob)...)
	issues = append(issues, validateInputs(p.Inputs)...)
	issues = append(issues, validateSink(p.Sink)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	if strings.TrimSpace(p.Output.Dir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "output.dir",
			Message:  "empty output dir; transformed tables will not be written back to the blob store",
		})
	}
	return issues
}

func validateBlob(b Blob) []Issue {
	var issues []Issue
	switch b.Kind {
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "blob.kind",
			Message:  "blob.kind must not be empty",
		})
	case "local":
		if strings.TrimSpace(b.Local.Root) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "blob.local.root",
				Message:  "local blob store requires a non-empty root",
			})
		}
	case "http":
		if strings.TrimSpace(b.HTTP.BaseURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "blob.http.base_url",
				Message:  "http blob store requires a non-empty base_url",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "blob.kind",
			Message:  fmt.Sprintf("unknown blob kind %q; ensure a matching implementation exists", b.Kind),
		})
	}
	return issues
}

func validateInputs(in Inputs) []Issue {
	var issues []Issue
	for _, f := range []struct {
		path  string
		value string
	}{
		{"inputs.orders", in.Orders},
		{"inputs.order_items", in.OrderItems},
		{"inputs.products", in.Products},
	} {
		if strings.TrimSpace(f.value) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     f.path,
				Message:  "input path must not be empty; all three raw tables are required",
			})
		}
	}
	return issues
}

func validateSink(s Sink) []Issue {
	var issues []Issue
	switch s.Kind {
	case "":
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "sink.kind",
			Message:  "empty sink kind; KPI rows will be computed but not persisted",
		})
	case "redis":
		// addr defaults in the backend; nothing required here
	case "sqlite", "postgres":
		if strings.TrimSpace(s.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "sink.dsn",
				Message:  fmt.Sprintf("%s sink requires a non-empty dsn", s.Kind),
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "sink.kind",
			Message:  fmt.Sprintf("unknown sink kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "prometheus":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "prometheus backend requires a pushgateway_url",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.StatsdAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.statsd_addr",
				Message:  "datadog backend requires a statsd_addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q (want none, prometheus, or datadog)", m.Backend),
		})
	}
	return issues
}
