package blob

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestLocalPutGet(t *testing.T) {
	store := NewLocal(t.TempDir())
	ctx := context.Background()

	if err := store.Put(ctx, "raw/orders.csv", []byte("a,b\n1,2\n")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, "raw/orders.csv")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Fatalf("Get = %q", got)
	}

	// Put replaces
	if err := store.Put(ctx, "raw/orders.csv", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _ = store.Get(ctx, "raw/orders.csv")
	if string(got) != "x" {
		t.Fatalf("Get after overwrite = %q", got)
	}
}

func TestLocalGetMissing(t *testing.T) {
	store := NewLocal(t.TempDir())
	_, err := store.Get(context.Background(), "nope.csv")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist in chain", err)
	}
}

func TestLocalRejectsEscapingPath(t *testing.T) {
	store := NewLocal(t.TempDir())
	if _, err := store.Get(context.Background(), "../etc/passwd"); err == nil {
		t.Fatal("Get outside root succeeded")
	}
	if err := store.Put(context.Background(), "../x", []byte("y")); err == nil {
		t.Fatal("Put outside root succeeded")
	}
}

func TestLocalCanceledContext(t *testing.T) {
	store := NewLocal(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Get(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Get err = %v, want context.Canceled", err)
	}
	if err := store.Put(ctx, "a", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Put err = %v, want context.Canceled", err)
	}
}
