package main

import (
	"strings"
	"testing"

	"orderetl/internal/config"
)

func TestStopAfterFor(t *testing.T) {
	tests := []struct {
		step    string
		want    string
		wantErr bool
	}{
		{"validate", "validate", false},
		{"transform", "transform", false},
		{"all", "", false},
		{"kpis", "", false},
		{"", "", false},
		{"everything", "", true},
	}
	for _, tt := range tests {
		got, err := stopAfterFor(tt.step)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("stopAfterFor(%q) succeeded", tt.step)
			}
			continue
		}
		if err != nil {
			t.Fatalf("stopAfterFor(%q): %v", tt.step, err)
		}
		if got != tt.want {
			t.Fatalf("stopAfterFor(%q) = %q, want %q", tt.step, got, tt.want)
		}
	}
}

func TestNewStoreUnknownKind(t *testing.T) {
	_, err := newStore(config.Blob{Kind: "s3"})
	if err == nil || !strings.Contains(err.Error(), "s3") {
		t.Fatalf("err = %v", err)
	}
}

func TestNewStoreKinds(t *testing.T) {
	if _, err := newStore(config.Blob{Kind: "local", Local: config.BlobLocal{Root: t.TempDir()}}); err != nil {
		t.Fatalf("local: %v", err)
	}
	if _, err := newStore(config.Blob{Kind: "http", HTTP: config.BlobHTTP{BaseURL: "http://example.com"}}); err != nil {
		t.Fatalf("http: %v", err)
	}
}

func TestNewParserDefaults(t *testing.T) {
	if p := newParser(config.Options{}); p == nil {
		t.Fatal("newParser returned nil")
	}
}
