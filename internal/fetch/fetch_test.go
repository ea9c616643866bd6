package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nutrawire/internal/news"
	"nutrawire/internal/retry"
)

type stubSource struct {
	name  string
	items []news.RawItem
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context) ([]news.RawItem, error) {
	return s.items, s.err
}

func TestCollectAllConcatenates(t *testing.T) {
	a := &stubSource{name: "a", items: []news.RawItem{
		{Title: "One", URL: "https://example.com/1"},
	}}
	b := &stubSource{name: "b", items: []news.RawItem{
		{Title: "Two", URL: "https://example.com/2"},
		{Title: "Three", URL: "https://example.com/3"},
	}}

	got := CollectAll(context.Background(), []Source{a, b})
	if len(got) != 3 {
		t.Errorf("collected %d items, want 3", len(got))
	}
}

func TestCollectAllSkipsFailedSource(t *testing.T) {
	ok := &stubSource{name: "ok", items: []news.RawItem{
		{Title: "Fine", URL: "https://example.com/f"},
	}}
	broken := &stubSource{name: "broken", err: errors.New("timeout")}

	got := CollectAll(context.Background(), []Source{broken, ok})
	if len(got) != 1 || got[0].Title != "Fine" {
		t.Errorf("failed source should not block others: %+v", got)
	}
}

func TestCollectAllDropsUntitledItems(t *testing.T) {
	src := &stubSource{name: "s", items: []news.RawItem{
		{Title: "", URL: "https://example.com/a"},
		{Title: "No link", URL: "  "},
		{Title: "Good", URL: "https://example.com/g"},
	}}

	got := CollectAll(context.Background(), []Source{src})
	if len(got) != 1 || got[0].Title != "Good" {
		t.Errorf("items without title or url must be dropped: %+v", got)
	}
}

func TestMediastackFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_key") != "msk" {
			t.Errorf("access_key missing from query")
		}
		if r.URL.Query().Get("categories") != "health" {
			t.Errorf("categories = %q", r.URL.Query().Get("categories"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{
					"title":        "Vitamin D research update",
					"description":  "New findings.",
					"url":          "https://example.com/vd",
					"published_at": "2026-08-30T10:00:00+00:00",
					"source":       "healthwire",
				},
			},
		})
	}))
	defer srv.Close()

	src := NewMediastackSource("msk", "health", 10, 24)
	src.endpoint = srv.URL
	src.retryCfg = retry.Config{MaxAttempts: 1}

	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d items, want 1", len(got))
	}
	item := got[0]
	if item.Title != "Vitamin D research update" || item.SourceType != news.SourceMediastack {
		t.Errorf("wrong item: %+v", item)
	}
	want := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	if !item.PublishedAt.Equal(want) {
		t.Errorf("published_at = %v, want %v", item.PublishedAt, want)
	}
}

func TestMediastackAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "invalid_access_key", "message": "bad key"},
		})
	}))
	defer srv.Close()

	src := NewMediastackSource("bad", "health", 10, 24)
	src.endpoint = srv.URL
	src.retryCfg = retry.Config{MaxAttempts: 1}

	if _, err := src.Fetch(context.Background()); err == nil {
		t.Errorf("error envelope should fail the fetch")
	}
}

func TestNewsAPIFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "nak" {
			t.Errorf("X-Api-Key missing")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"articles": []map[string]any{
				{
					"title":       "Probiotic trial results",
					"description": "Trial summary.",
					"url":         "https://example.com/p",
					"publishedAt": "2026-08-30T08:00:00Z",
					"source":      map[string]any{"name": "sciencedaily"},
				},
				{
					"title":       "[Removed]",
					"url":         "https://example.com/r",
					"source":      map[string]any{"name": "gone"},
					"publishedAt": "2026-08-30T08:00:00Z",
				},
			},
		})
	}))
	defer srv.Close()

	src := NewNewsAPISource("nak", "nutraceutical", 10, 24)
	src.endpoint = srv.URL
	src.retryCfg = retry.Config{MaxAttempts: 1}

	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("tombstone should be filtered, got %d items", len(got))
	}
	if got[0].Source != "sciencedaily" || got[0].SourceType != news.SourceNewsAPI {
		t.Errorf("wrong item: %+v", got[0])
	}
}

func TestNewsAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "apiKeyInvalid"})
	}))
	defer srv.Close()

	src := NewNewsAPISource("bad", "health", 10, 24)
	src.endpoint = srv.URL
	src.retryCfg = retry.Config{MaxAttempts: 1}

	if _, err := src.Fetch(context.Background()); err == nil {
		t.Errorf("status=error should fail the fetch")
	}
}

func TestParsePublishedAtFallback(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := parsePublishedAt("not a date", fallback); !got.Equal(fallback) {
		t.Errorf("unparseable timestamp should fall back, got %v", got)
	}
}
