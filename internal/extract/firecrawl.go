package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultFirecrawlEndpoint = "https://api.firecrawl.dev/v1/scrape"

// FirecrawlClient is the primary extraction backend: a hosted scrape API
// that returns the article as markdown.
type FirecrawlClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewFirecrawlClient(apiKey, endpoint string) *FirecrawlClient {
	if endpoint == "" {
		endpoint = defaultFirecrawlEndpoint
	}
	return &FirecrawlClient{
		apiKey:   apiKey,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *FirecrawlClient) Name() string { return "firecrawl" }

func (c *FirecrawlClient) Extract(ctx context.Context, url string) (string, error) {
	if c.apiKey == "" {
		return "", Permanent(fmt.Errorf("firecrawl API key not configured"))
	}

	body, err := json.Marshal(map[string]any{
		"url":     url,
		"formats": []string{"markdown", "html"},
	})
	if err != nil {
		return "", Permanent(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", Permanent(fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("firecrawl request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decoding
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusUnprocessableEntity:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", Permanent(fmt.Errorf("firecrawl rejected request %s: %s", resp.Status, strings.TrimSpace(string(payload))))
	default:
		// 429 and 5xx are worth retrying
		return "", fmt.Errorf("firecrawl error: %s", resp.Status)
	}

	var result struct {
		Data struct {
			Markdown string `json:"markdown"`
			HTML     string `json:"html"`
			Content  string `json:"content"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode firecrawl response: %w", err)
	}

	// Prefer markdown, it needs no further cleanup.
	for _, text := range []string{result.Data.Markdown, result.Data.HTML, result.Data.Content} {
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	return "", nil
}
