package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"nutrawire/internal/news"
	"nutrawire/internal/retry"
)

const defaultMediastackEndpoint = "http://api.mediastack.com/v1/news"

// MediastackSource pulls recent articles from the Mediastack REST API.
type MediastackSource struct {
	apiKey     string
	category   string
	limit      int
	windowHrs  int
	endpoint   string
	httpClient *http.Client
	retryCfg   retry.Config
	now        func() time.Time
}

// NewMediastackSource creates a source for the given key and category
func NewMediastackSource(apiKey, category string, limit, windowHrs int) *MediastackSource {
	if category == "" {
		category = "health"
	}
	if limit <= 0 {
		limit = 10
	}
	if windowHrs <= 0 {
		windowHrs = 24
	}
	return &MediastackSource{
		apiKey:     apiKey,
		category:   category,
		limit:      limit,
		windowHrs:  windowHrs,
		endpoint:   defaultMediastackEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryCfg:   retry.Config{MaxAttempts: 3, Delay: 2 * time.Second},
		now:        time.Now,
	}
}

func (s *MediastackSource) Name() string { return "mediastack" }

// Fetch requests one page of articles inside the time window.
func (s *MediastackSource) Fetch(ctx context.Context) ([]news.RawItem, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("mediastack api key is not configured")
	}

	now := s.now().UTC()
	start := now.Add(-time.Duration(s.windowHrs) * time.Hour)
	dateRange := start.Format("2006-01-02") + "," + now.Format("2006-01-02")

	params := url.Values{}
	params.Set("access_key", s.apiKey)
	params.Set("categories", s.category)
	params.Set("date", dateRange)
	params.Set("limit", strconv.Itoa(s.limit))
	params.Set("sort", "published_desc")

	var items []news.RawItem
	err := retry.WithRetry(ctx, s.retryCfg, func() error {
		got, err := s.fetchOnce(ctx, params)
		if err != nil {
			log.Printf("Mediastack request failed: %v", err)
			return err
		}
		items = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MediastackSource) fetchOnce(ctx context.Context, params url.Values) ([]news.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Printf("Warning: failed to close response body: %v", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mediastack API error: status %d", resp.StatusCode)
	}

	var payload struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Data []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			PublishedAt string `json:"published_at"`
			Source      string `json:"source"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("mediastack decode error: %v", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("mediastack API error: %s %s", payload.Error.Code, payload.Error.Message)
	}

	items := make([]news.RawItem, 0, len(payload.Data))
	for _, a := range payload.Data {
		items = append(items, news.RawItem{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: parsePublishedAt(a.PublishedAt, s.now()),
			Source:      a.Source,
			SourceType:  news.SourceMediastack,
		})
	}
	log.Printf("Mediastack returned %d articles", len(items))
	return items, nil
}

// parsePublishedAt handles the timestamp variants the news APIs emit,
// falling back to the given default.
func parsePublishedAt(s string, fallback time.Time) time.Time {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05-07:00",
		"2006-01-02T15:04:05+00:00",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}
