package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aunovis/secure-sum/pkg/cache"
	"github.com/aunovis/secure-sum/pkg/httputil"
)

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(c, "test:", time.Hour, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != cache.Cache(c) {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "test:", time.Hour, nil)
	if _, ok := client.cache.(*cache.NullCache); !ok {
		t.Errorf("nil backend should become NullCache, got %T", client.cache)
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != UserAgent {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, map[string]string{"User-Agent": UserAgent})
	client.http = server.Client()

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var receivedHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedHeader = r.Header.Get("X-Override")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, map[string]string{"X-Override": "default"})
	client.http = server.Client()

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"X-Override": "overridden"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if receivedHeader != "overridden" {
		t.Errorf("header = %q, want %q", receivedHeader, "overridden")
	}
}

func TestClientGetErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		header    map[string]string
		want      error
		retryable bool
	}{
		{"not found", http.StatusNotFound, nil, ErrNotFound, false},
		{"unauthorized", http.StatusUnauthorized, nil, ErrUnauthorized, false},
		{"too many requests", http.StatusTooManyRequests, map[string]string{"Retry-After": "2"}, ErrRateLimited, true},
		{"exhausted quota", http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "0"}, ErrRateLimited, true},
		{"server error", http.StatusInternalServerError, nil, ErrNetwork, true},
		{"forbidden", http.StatusForbidden, nil, ErrNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(nil, "test:", time.Hour, nil)
			client.http = server.Client()

			var resp map[string]string
			err := client.Get(context.Background(), server.URL, &resp)
			if !errors.Is(err, tt.want) {
				t.Errorf("Get() error = %v, want %v", err, tt.want)
			}
			var retryErr *httputil.RetryableError
			if got := errors.As(err, &retryErr); got != tt.retryable {
				t.Errorf("retryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestClientCached(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, nil)
	ctx := context.Background()

	fetchCount := 0
	fetch := func(v *string) func() error {
		return func() error {
			fetchCount++
			*v = "fetched"
			return nil
		}
	}

	var first string
	if err := client.Cached(ctx, "key", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	var second string
	if err := client.Cached(ctx, "key", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1", fetchCount)
	}
	if second != "fetched" {
		t.Errorf("cached value = %q, want %q", second, "fetched")
	}

	// refresh bypasses the cache
	var third string
	if err := client.Cached(ctx, "key", true, &third, fetch(&third)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 2 {
		t.Errorf("fetch count after refresh = %d, want 2", fetchCount)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client := NewClient(nil, "test:", time.Hour, nil)

	var value string
	err := client.Cached(context.Background(), "key", false, &value, func() error {
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
}

func TestClientRateLimit(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, nil).WithRateLimit(50 * time.Millisecond)
	client.http = server.Client()

	start := time.Now()
	for range 3 {
		var resp map[string]string
		if err := client.Get(context.Background(), server.URL, &resp); err != nil {
			t.Fatalf("Get() error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("3 rate limited requests took %v, want at least 100ms", elapsed)
	}
	if hits.Load() != 3 {
		t.Errorf("server hits = %d, want 3", hits.Load())
	}
}

func TestNormalizeRepoURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"https://github.com/serde-rs/serde", "https://github.com/serde-rs/serde"},
		{"https://github.com/serde-rs/serde.git", "https://github.com/serde-rs/serde"},
		{"https://github.com/serde-rs/serde/", "https://github.com/serde-rs/serde"},
		{"git+https://github.com/serde-rs/serde.git", "https://github.com/serde-rs/serde"},
		{"git@github.com:serde-rs/serde.git", "https://github.com/serde-rs/serde"},
		{"git://github.com/serde-rs/serde", "https://github.com/serde-rs/serde"},
		{"http://github.com/serde-rs/serde", "https://github.com/serde-rs/serde"},
		{"https://gitlab.com/a/b", "https://gitlab.com/a/b"},
	}
	for _, tt := range tests {
		if got := NormalizeRepoURL(tt.input); got != tt.want {
			t.Errorf("NormalizeRepoURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
