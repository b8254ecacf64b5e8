package edgar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientSetsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(
		WithEndpoints(server.URL, server.URL, server.URL),
		WithUserAgent("test-agent/1.0 (test@example.com)"),
		WithRateLimit(10000),
	)
	if _, err := client.FetchDocument(context.Background(), server.URL+"/doc"); err != nil {
		t.Fatalf("FetchDocument failed: %v", err)
	}
	if gotUA != "test-agent/1.0 (test@example.com)" {
		t.Errorf("Expected identifying User-Agent, got %q", gotUA)
	}
}

func TestClientRateLimitSpacing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	// 20 req/s with burst 1 forces 50ms between consecutive requests:
	// 3 requests take at least ~100ms end to end.
	client := NewClient(
		WithEndpoints(server.URL, server.URL, server.URL),
		WithRateLimit(20),
	)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.FetchDocument(context.Background(), server.URL+"/doc"); err != nil {
			t.Fatalf("FetchDocument failed: %v", err)
		}
	}
	elapsed := time.Since(start)
	if elapsed < 90*time.Millisecond {
		t.Errorf("Expected rate limiter to space 3 requests over ~100ms, took %v", elapsed)
	}
}

func TestClientStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(
		WithEndpoints(server.URL, server.URL, server.URL),
		WithRateLimit(10000),
	)
	_, err := client.FetchDocument(context.Background(), server.URL+"/missing")
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
	if !IsNotFound(err) {
		t.Errorf("Expected IsNotFound to recognize the error, got %v", err)
	}
}

func TestClientContextCancellation(t *testing.T) {
	client := NewClient(WithRateLimit(0.001)) // effectively blocks on the limiter
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.FetchDocument(ctx, "https://example.com"); err == nil {
		t.Error("Expected error when context is already cancelled")
	}
}
