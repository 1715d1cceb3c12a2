package blob

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestHTTP(t *testing.T, h http.HandlerFunc, retries int) *HTTP {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store := NewHTTP(HTTPConfig{
		BaseURL:        srv.URL,
		MaxRetries:     retries,
		InitialBackoff: time.Millisecond,
	})
	store.sleep = func(time.Duration) {}
	return store
}

func TestHTTPGet(t *testing.T) {
	store := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/raw/orders.csv" {
			t.Errorf("path = %q", r.URL.Path)
		}
		io.WriteString(w, "a,b\n")
	}, 0)
	got, err := store.Get(context.Background(), "raw/orders.csv")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "a,b\n" {
		t.Fatalf("Get = %q", got)
	}
}

func TestHTTPGetRetriesTransient(t *testing.T) {
	var calls atomic.Int32
	store := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, "ok")
	}, 3)
	got, err := store.Get(context.Background(), "x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "ok" {
		t.Fatalf("Get = %q", got)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestHTTPGetExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	store := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 2)
	if _, err := store.Get(context.Background(), "x"); err == nil {
		t.Fatal("Get succeeded, want error")
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestHTTPGetNotFound(t *testing.T) {
	var calls atomic.Int32
	store := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}, 3)
	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	// 404 is final, not retried
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestHTTPPut(t *testing.T) {
	var gotBody atomic.Value
	store := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q", r.Method)
		}
		b, _ := io.ReadAll(r.Body)
		gotBody.Store(string(b))
	}, 0)
	if err := store.Put(context.Background(), "out/orders.csv", []byte("payload")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if gotBody.Load() != "payload" {
		t.Fatalf("body = %v", gotBody.Load())
	}
}

func TestHTTPClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	store := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}, 3)
	if _, err := store.Get(context.Background(), "x"); err == nil {
		t.Fatal("Get succeeded, want error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}
