package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func resetGateway(t *testing.T) {
	t.Helper()
	prevRL, prevCB, prevBackoff := RateLimiter, CircuitBreaker, initialBackoff
	RateLimiter = newRateLimiter(1000, 1000)
	CircuitBreaker = newCircuitBreaker(5, time.Minute)
	initialBackoff = time.Millisecond
	t.Cleanup(func() {
		RateLimiter, CircuitBreaker, initialBackoff = prevRL, prevCB, prevBackoff
	})
}

func TestGetItemDetails_ParsesStringAndNumberSizes(t *testing.T) {
	resetGateway(t)

	tests := []struct {
		name string
		body string
		want uint64
	}{
		{"string size", `{"response":{"result":1,"resultcount":1,"publishedfiledetails":[{"publishedfileid":"42","result":1,"title":"Nacht","file_size":"123456"}]}}`, 123456},
		{"number size", `{"response":{"result":1,"resultcount":1,"publishedfiledetails":[{"publishedfileid":"42","result":1,"title":"Nacht","file_size":987}]}}`, 987},
		{"missing size", `{"response":{"result":1,"resultcount":1,"publishedfiledetails":[{"publishedfileid":"42","result":1,"title":"Nacht"}]}}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				raw, _ := io.ReadAll(r.Body)
				form, _ := url.ParseQuery(string(raw))
				if form.Get("itemcount") != "1" || form.Get("publishedfileids[0]") != "42" {
					t.Errorf("unexpected form: %s", raw)
				}
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			info, err := GetItemDetails(context.Background(), srv.URL, "42")
			if err != nil {
				t.Fatalf("GetItemDetails: %v", err)
			}
			if info.Title != "Nacht" || info.FileSizeBytes != tt.want {
				t.Fatalf("got %+v, want title Nacht size %d", info, tt.want)
			}
		})
	}
}

func TestGetItemDetails_NotFound(t *testing.T) {
	resetGateway(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"response":{"result":1,"resultcount":1,"publishedfiledetails":[{"publishedfileid":"42","result":9}]}}`)
	}))
	defer srv.Close()

	_, err := Metadata{Endpoint: srv.URL}.ItemDetails(context.Background(), "42")
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestRetryDo_RetriesServerErrors(t *testing.T) {
	resetGateway(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"response":{"publishedfiledetails":[{"result":1,"title":"ok","file_size":"1"}]}}`)
	}))
	defer srv.Close()

	info, err := GetItemDetails(context.Background(), srv.URL, "7")
	if err != nil {
		t.Fatalf("GetItemDetails: %v", err)
	}
	if info.Title != "ok" || hits.Load() != 3 {
		t.Fatalf("title=%q hits=%d, want ok/3", info.Title, hits.Load())
	}
}

func TestRetryDo_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	resetGateway(t)
	CircuitBreaker = newCircuitBreaker(2, time.Minute)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := GetItemDetails(context.Background(), srv.URL, "7"); err == nil {
		t.Fatal("expected failure")
	}
	if CircuitBreaker.State() != circuitOpen {
		t.Fatalf("circuit state = %s, want open", CircuitBreaker.State())
	}
	if _, err := GetItemDetails(context.Background(), srv.URL, "7"); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := newCircuitBreaker(1, 0)
	if cb.RecordFailure() != circuitOpen {
		t.Fatal("expected circuit to open")
	}
	state, ok := cb.Allow()
	if !ok || state != circuitHalfOpen {
		t.Fatalf("Allow() = %s,%v want half-open,true", state, ok)
	}
	if prev := cb.RecordSuccess(); prev != circuitHalfOpen {
		t.Fatalf("prev = %s, want half-open", prev)
	}
	if cb.State() != circuitClosed {
		t.Fatalf("state = %s, want closed", cb.State())
	}
}
