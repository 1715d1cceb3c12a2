package sink

import (
	"context"
	"errors"
	"strings"
	"testing"

	"orderetl/internal/schema"
)

type fakeSink struct{ closed bool }

func (f *fakeSink) PutCategoryKPIs(context.Context, []schema.CategoryKPI) error { return nil }
func (f *fakeSink) PutOrderKPIs(context.Context, []schema.OrderKPI) error       { return nil }
func (f *fakeSink) Close()                                                      { f.closed = true }

func TestRegisterAndNew(t *testing.T) {
	fake := &fakeSink{}
	var gotCfg Config
	Register("fake", func(ctx context.Context, cfg Config) (Sink, error) {
		gotCfg = cfg
		return fake, nil
	})

	s, err := New(context.Background(), Config{Kind: "fake", DSN: "dsn://x"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s != fake {
		t.Fatalf("New returned %T, want the registered fake", s)
	}
	if gotCfg.DSN != "dsn://x" {
		t.Fatalf("factory cfg = %+v", gotCfg)
	}
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "bogus"})
	if err == nil {
		t.Fatal("New succeeded for unknown kind")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("err = %v, want kind in message", err)
	}
}

func TestFactoryErrorsBubbleUp(t *testing.T) {
	wantErr := errors.New("connect refused")
	Register("failing", func(context.Context, Config) (Sink, error) {
		return nil, wantErr
	})
	if _, err := New(context.Background(), Config{Kind: "failing"}); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}
