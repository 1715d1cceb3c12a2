package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPConfig configures the HTTP-backed Store. Zero values get defaults:
// 30s timeout, 3 retries, 200ms initial backoff capped at 5s.
type HTTPConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Transport overrides the default RoundTripper, mainly for tests.
	Transport http.RoundTripper
}

// HTTP is a Store over an HTTP object endpoint. Transient failures (network
// errors, 5xx, 429) are retried with exponential backoff; other statuses are
// final.
type HTTP struct {
	base           string
	client         *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	// sleep is injectable so retry tests run without real waits.
	sleep func(time.Duration)
}

// NewHTTP constructs an HTTP store from cfg, applying defaults for zero
// values.
func NewHTTP(cfg HTTPConfig) *HTTP {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	return &HTTP{
		base:           strings.TrimSuffix(cfg.BaseURL, "/"),
		client:         &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		sleep:          time.Sleep,
	}
}

// Get fetches the object at path. A 404 maps onto ErrNotFound.
func (h *HTTP) Get(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	err := h.do(ctx, http.MethodGet, path, nil, func(resp *http.Response) error {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		body = b
		return nil
	})
	return body, err
}

// Put uploads the object at path, replacing any existing one.
func (h *HTTP) Put(ctx context.Context, path string, data []byte) error {
	return h.do(ctx, http.MethodPut, path, data, func(*http.Response) error { return nil })
}

func (h *HTTP) do(ctx context.Context, method, path string, body []byte, onOK func(*http.Response) error) error {
	url := h.base + "/" + strings.TrimPrefix(path, "/")
	attempts := h.maxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(string(body)))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		resp, err := h.client.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
		case retryable(resp.StatusCode):
			resp.Body.Close()
			lastErr = fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
		case resp.StatusCode >= 300:
			resp.Body.Close()
			return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
		default:
			err := onOK(resp)
			resp.Body.Close()
			return err
		}
		if attempt+1 >= attempts {
			return lastErr
		}
		backoff := h.initialBackoff << attempt
		if backoff > h.maxBackoff {
			backoff = h.maxBackoff
		}
		if err := sleepCtx(ctx, h.sleep, backoff); err != nil {
			return err
		}
	}
	return lastErr
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

func sleepCtx(ctx context.Context, sleep func(time.Duration), d time.Duration) error {
	done := make(chan struct{})
	go func() {
		sleep(d)
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
