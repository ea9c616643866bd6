package fetch

import (
	"context"
	"log"
	"time"

	"github.com/mmcdole/gofeed"

	"nutrawire/internal/news"
)

const defaultMaxPerFeed = 10

// RSSSource pulls items from a list of feed URLs, keeping only items
// published inside the time window.
type RSSSource struct {
	urls       []string
	windowHrs  int
	maxPerFeed int
	parser     *gofeed.Parser
	now        func() time.Time
}

// NewRSSSource creates a source over the given feed URLs
func NewRSSSource(urls []string, windowHrs int) *RSSSource {
	if windowHrs <= 0 {
		windowHrs = 24
	}
	return &RSSSource{
		urls:       urls,
		windowHrs:  windowHrs,
		maxPerFeed: defaultMaxPerFeed,
		parser:     gofeed.NewParser(),
		now:        time.Now,
	}
}

func (s *RSSSource) Name() string { return "rss" }

// Fetch downloads and parses all feeds. A broken feed is logged and
// skipped, not fatal. Items older than the window or without a parseable
// publish date are dropped, and each feed contributes at most
// maxPerFeed items.
func (s *RSSSource) Fetch(ctx context.Context) ([]news.RawItem, error) {
	cutoff := s.now().UTC().Add(-time.Duration(s.windowHrs) * time.Hour)

	var items []news.RawItem
	successCount := 0

	for _, url := range s.urls {
		feed, err := s.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			log.Printf("Error parsing RSS %s: %v", url, err)
			continue
		}

		sourceName := feed.Title
		if sourceName == "" {
			sourceName = url
		}

		kept := 0
		entries := feed.Items
		if len(entries) > s.maxPerFeed {
			entries = entries[:s.maxPerFeed]
		}
		for _, entry := range entries {
			item, ok := feedItemToRaw(entry, sourceName, cutoff)
			if !ok {
				continue
			}
			items = append(items, item)
			kept++
		}
		successCount++
		log.Printf("Loaded %d/%d news from %s", kept, len(feed.Items), url)
	}

	log.Printf("Processed RSS feeds: %d/%d ok", successCount, len(s.urls))
	return items, nil
}

// feedItemToRaw maps a feed entry, rejecting entries with no publish
// date and entries older than the cutoff.
func feedItemToRaw(entry *gofeed.Item, sourceName string, cutoff time.Time) (news.RawItem, bool) {
	var published time.Time
	switch {
	case entry.PublishedParsed != nil:
		published = *entry.PublishedParsed
	case entry.UpdatedParsed != nil:
		published = *entry.UpdatedParsed
	default:
		log.Printf("Skip undated entry: %s", entry.Title)
		return news.RawItem{}, false
	}

	if published.Before(cutoff) {
		return news.RawItem{}, false
	}

	return news.RawItem{
		Title:       entry.Title,
		Description: entry.Description,
		Content:     entry.Content,
		URL:         entry.Link,
		PublishedAt: published,
		Source:      sourceName,
		SourceType:  news.SourceRSS,
	}, true
}
