package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxScrapedChars = 1800

// Selectors tried in order; the first one yielding enough paragraphs wins.
var contentSelectors = []string{
	"article p",
	".article-body p",
	".article-content p",
	".post-content p",
	".entry-content p",
	".content p",
	"main p",
	"#content p",
	"p",
}

// Lines containing these are boilerplate, not article text.
var junkIndicators = []string{
	"cookie", "gdpr", "advertisement", "subscribe",
	"sign up", "newsletter", "read more", "click here",
	"follow us", "share this", "all rights reserved", "privacy policy",
}

// Scraper is the secondary extraction backend: fetch the page ourselves and
// harvest paragraphs with goquery.
type Scraper struct {
	httpClient *http.Client
}

func NewScraper() *Scraper {
	return &Scraper{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *Scraper) Name() string { return "scraper" }

func (s *Scraper) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", Permanent(fmt.Errorf("new request: %w", err))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("load page: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", Permanent(fmt.Errorf("page unavailable: %s", resp.Status))
	default:
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	content := harvestParagraphs(doc)
	if content == "" {
		return "", Permanent(fmt.Errorf("no article content found"))
	}
	return content, nil
}

// harvestParagraphs collects paragraph text through the selector cascade.
// Three good paragraphs are enough to stop trying broader selectors.
func harvestParagraphs(doc *goquery.Document) string {
	var paragraphs []string

	for _, selector := range contentSelectors {
		doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 20 && !isJunkLine(text) {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
		paragraphs = paragraphs[:0]
	}

	if len(paragraphs) == 0 {
		// Take whatever single paragraph the page has.
		doc.Find("p").Each(func(i int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 20 && !isJunkLine(text) {
				paragraphs = append(paragraphs, text)
			}
		})
	}

	return capParagraphs(paragraphs)
}

func isJunkLine(line string) bool {
	lower := strings.ToLower(line)
	for _, indicator := range junkIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// capParagraphs joins paragraphs up to the length budget, never cutting a
// paragraph in half.
func capParagraphs(paragraphs []string) string {
	var kept []string
	total := 0
	for _, p := range paragraphs {
		if total+len(p) > maxScrapedChars && len(kept) > 0 {
			break
		}
		kept = append(kept, p)
		total += len(p) + 2
	}
	return strings.Join(kept, "\n\n")
}
