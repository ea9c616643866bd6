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
	"strings"
	"time"

	"nutrawire/internal/news"
	"nutrawire/internal/retry"
)

const defaultNewsAPIEndpoint = "https://newsapi.org/v2/everything"

// NewsAPISource pulls articles from the NewsAPI everything endpoint.
type NewsAPISource struct {
	apiKey     string
	query      string
	limit      int
	windowHrs  int
	endpoint   string
	httpClient *http.Client
	retryCfg   retry.Config
	now        func() time.Time
}

// NewNewsAPISource creates a source for the given key and query
func NewNewsAPISource(apiKey, query string, limit, windowHrs int) *NewsAPISource {
	if query == "" {
		query = "health"
	}
	if limit <= 0 {
		limit = 10
	}
	if windowHrs <= 0 {
		windowHrs = 24
	}
	return &NewsAPISource{
		apiKey:     apiKey,
		query:      query,
		limit:      limit,
		windowHrs:  windowHrs,
		endpoint:   defaultNewsAPIEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryCfg:   retry.Config{MaxAttempts: 3, Delay: 2 * time.Second},
		now:        time.Now,
	}
}

func (s *NewsAPISource) Name() string { return "newsapi" }

// Fetch requests recent articles matching the query.
func (s *NewsAPISource) Fetch(ctx context.Context) ([]news.RawItem, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("newsapi key is not configured")
	}

	now := s.now().UTC()
	start := now.Add(-time.Duration(s.windowHrs) * time.Hour)

	params := url.Values{}
	params.Set("q", s.query)
	params.Set("from", start.Format("2006-01-02"))
	params.Set("to", now.Format("2006-01-02"))
	params.Set("pageSize", strconv.Itoa(s.limit))
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")

	var items []news.RawItem
	err := retry.WithRetry(ctx, s.retryCfg, func() error {
		got, err := s.fetchOnce(ctx, params)
		if err != nil {
			log.Printf("NewsAPI request failed: %v", err)
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

func (s *NewsAPISource) fetchOnce(ctx context.Context, params url.Values) ([]news.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", s.apiKey)

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
		return nil, fmt.Errorf("newsapi error: status %d", resp.StatusCode)
	}

	var payload struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("newsapi decode error: %v", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi error: %s", payload.Message)
	}

	items := make([]news.RawItem, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		// NewsAPI keeps tombstones for withdrawn articles.
		if strings.Contains(a.Title, "[Removed]") {
			continue
		}
		items = append(items, news.RawItem{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: parsePublishedAt(a.PublishedAt, s.now()),
			Source:      a.Source.Name,
			SourceType:  news.SourceNewsAPI,
		})
	}
	log.Printf("NewsAPI returned %d articles", len(items))
	return items, nil
}
