package remotelist

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ramana-bouquets/internal/domain"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestHTTPGetMapsNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/users/u1/lists/cart" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("unexpected auth header %q", got)
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"not found"}`)
	}))
	defer ts.Close()

	c := NewHTTP(ts.Client(), ts.URL+"/", staticToken("tok"))
	_, err := c.Get(context.Background(), domain.ListCart, "u1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHTTPUpsertSendsItems(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Fatalf("unexpected method %s", r.Method)
		}
		var body struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "rec-1",
			"user_id":    "u1",
			"list":       "favorites",
			"items":      body.Items,
			"updated_at": "2026-01-02T03:04:05Z",
		})
	}))
	defer ts.Close()

	c := NewHTTP(ts.Client(), ts.URL, nil)
	rec, err := c.Upsert(context.Background(), domain.ListFavorites, "u1", json.RawMessage(`[{"id":"x"}]`))
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if rec.ID != "rec-1" || !strings.Contains(string(rec.Items), `"x"`) {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestHTTPErrorStatuses(t *testing.T) {
	status := http.StatusForbidden
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"error":"backend down"}`)
	}))
	defer ts.Close()

	c := NewHTTP(ts.Client(), ts.URL, nil)
	if _, err := c.Get(context.Background(), domain.ListCart, "u1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	status = http.StatusBadGateway
	_, err := c.Get(context.Background(), domain.ListCart, "u1")
	if err == nil || err.Error() != "remotelist status 502: backend down" {
		t.Fatalf("unexpected error %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("502 must not look like not found")
	}

	status = http.StatusNotFound
	if _, err := c.Get(context.Background(), domain.ListCart, "u1"); err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("404 without the record body must not be ErrNotFound, got %v", err)
	}
}

func TestHTTPWrongBaseURLIsNotMissingRecord(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	c := NewHTTP(ts.Client(), ts.URL+"/wrong-prefix", nil)
	_, err := c.Get(context.Background(), domain.ListCart, "u1")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected a status error, got %v", err)
	}
	if !strings.Contains(err.Error(), "remotelist status 404") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestHTTPPinnedTokenOverridesSource(t *testing.T) {
	got := make(chan string, 3)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"id":"rec-1","items":[]}`)
	}))
	defer ts.Close()

	c := NewHTTP(ts.Client(), ts.URL, staticToken("current"))
	ctx := context.Background()
	if _, err := c.Upsert(ctx, domain.ListCart, "u1", nil); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := c.Upsert(WithToken(ctx, "queued"), domain.ListCart, "u1", nil); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := c.Upsert(WithToken(ctx, ""), domain.ListCart, "u1", nil); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	for i, want := range []string{"Bearer current", "Bearer queued", ""} {
		if header := <-got; header != want {
			t.Fatalf("request %d: expected %q, got %q", i, want, header)
		}
	}
}

