package textgen

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newMockProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewAnthropic("test-key", "test-model", time.Second)
	p.baseURL = srv.URL
	return p
}

func TestGenerateConcatenatesTextBlocks(t *testing.T) {
	p := newMockProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Error("expected version header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content": [{"type": "text", "text": "Hello "}, {"type": "tool_use", "text": "ignored"}, {"type": "text", "text": "world."}]}`))
	})

	got, err := p.Generate(context.Background(), "say hello", 64)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Hello world." {
		t.Fatalf("unexpected completion %q", got)
	}
}

func TestGenerateRetriesTransportErrorOnce(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			// Drop the first connection mid-flight.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("recorder does not support hijacking")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatalf("hijack: %v", err)
			}
			conn.Close()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content": [{"type": "text", "text": "second try"}]}`))
	}))
	t.Cleanup(srv.Close)

	p := NewAnthropic("test-key", "test-model", time.Second)
	p.baseURL = srv.URL

	got, err := p.Generate(context.Background(), "say hello", 64)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "second try" {
		t.Fatalf("unexpected completion %q", got)
	}
	if attempts != 2 {
		t.Fatalf("expected two attempts, got %d", attempts)
	}
}

func TestGenerateErrorStatusIsUnavailable(t *testing.T) {
	p := newMockProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := p.Generate(context.Background(), "say hello", 64)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGenerateEmptyCompletionIsUnavailable(t *testing.T) {
	p := newMockProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content": []}`))
	})

	_, err := p.Generate(context.Background(), "say hello", 64)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGenerateWithoutKeyIsUnavailable(t *testing.T) {
	p := NewAnthropic("", "test-model", time.Second)

	_, err := p.Generate(context.Background(), "say hello", 64)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNoOpProvider(t *testing.T) {
	var p NoOpProvider

	_, err := p.Generate(context.Background(), "anything", 64)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
