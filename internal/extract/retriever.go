package extract

import (
	"context"
	"log"
	"strings"
	"time"

	"nutrawire/internal/metrics"
	"nutrawire/internal/retry"
)

const (
	maxAttemptsPerExtractor = 3
	baseBackoff             = 1 * time.Second
)

// Retriever tries each extractor in order: up to three attempts with
// exponential backoff (1s, 2s, 4s) on transient failure, an immediate fall
// through on permanent failure. The first non-empty text wins; when every
// backend is exhausted it returns "" and the caller falls back to whatever
// raw text it already had.
type Retriever struct {
	extractors []Extractor

	sleep func(time.Duration)
}

func NewRetriever(extractors ...Extractor) *Retriever {
	return &Retriever{
		extractors: extractors,
		sleep:      time.Sleep,
	}
}

// Retrieve always returns a string, possibly empty. It never fails the item.
func (r *Retriever) Retrieve(ctx context.Context, url string) string {
	for _, ex := range r.extractors {
		if text := r.tryExtractor(ctx, ex, url); text != "" {
			return text
		}
		log.Printf("extract: %s gave nothing for %s, falling through", ex.Name(), url)
	}
	metrics.Global.IncrementExtractionsFailed()
	log.Printf("extract: all backends failed for %s", url)
	return ""
}

func (r *Retriever) tryExtractor(ctx context.Context, ex Extractor, url string) string {
	backoff := retry.Config{Delay: baseBackoff, Exponential: true}

	for attempt := 1; attempt <= maxAttemptsPerExtractor; attempt++ {
		text, err := ex.Extract(ctx, url)
		if err == nil {
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				log.Printf("extract: %s got %d chars (attempt %d)", ex.Name(), len(trimmed), attempt)
				return trimmed
			}
			log.Printf("extract: %s returned empty text (attempt %d/%d)", ex.Name(), attempt, maxAttemptsPerExtractor)
		} else {
			if IsPermanent(err) {
				log.Printf("extract: %s failed permanently: %v", ex.Name(), err)
				return ""
			}
			log.Printf("extract: %s attempt %d/%d failed: %v", ex.Name(), attempt, maxAttemptsPerExtractor, err)
		}

		if attempt < maxAttemptsPerExtractor {
			r.sleep(retry.BackoffDelay(backoff, attempt))
		}
	}
	return ""
}
