package fetch

import (
	"context"
	"log"
	"strings"

	"nutrawire/internal/metrics"
	"nutrawire/internal/news"
)

// Source is one upstream news provider.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]news.RawItem, error)
}

// CollectAll runs every source and concatenates the results. A failing
// source is logged and skipped; items without a title or link are
// dropped before they enter the pipeline.
func CollectAll(ctx context.Context, sources []Source) []news.RawItem {
	var collected []news.RawItem

	for _, src := range sources {
		items, err := src.Fetch(ctx)
		if err != nil {
			log.Printf("⚠️ Source %s failed: %v", src.Name(), err)
			continue
		}

		kept := 0
		for _, item := range items {
			if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.URL) == "" {
				continue
			}
			collected = append(collected, item)
			kept++
		}
		log.Printf("Source %s: %d items (%d kept)", src.Name(), len(items), kept)
	}

	metrics.Global.AddItemsCollected(len(collected))
	return collected
}
