package pipeline

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"nutrawire/internal/ai"
	"nutrawire/internal/metrics"
	"nutrawire/internal/news"
	"nutrawire/internal/publish"
)

// Deduper collapses near-duplicate items.
type Deduper interface {
	Merge(items []news.RawItem) []news.RawItem
}

// Judge runs the AI evaluation and rewrite calls.
type Judge interface {
	Evaluate(ctx context.Context, item news.RawItem) (ai.Evaluation, bool)
	Optimize(ctx context.Context, rawText, link string) (news.Payload, bool)
}

// ContentRetriever fetches full article text for a URL.
type ContentRetriever interface {
	Retrieve(ctx context.Context, url string) string
}

// Delivery hands payloads to the outside world.
type Delivery interface {
	PublishAll(ctx context.Context, items []publish.Outgoing) int
}

// Result summarizes one batch run.
type Result struct {
	CollectedCount int
	ProcessedCount int
	SentCount      int
	Message        string
}

// Coordinator drives one batch through dedup, evaluation, selection,
// content retrieval, optimization and publishing. Strictly sequential;
// a per-item failure drops only that item.
type Coordinator struct {
	deduper        Deduper
	judge          Judge
	retriever      ContentRetriever
	delivery       Delivery
	minScore       float64
	maxSendLimit   int
	contentEnabled bool
}

// Options configures a Coordinator.
type Options struct {
	MinRelevanceScore float64
	MaxSendLimit      int
	ContentEnabled    bool
}

// NewCoordinator wires the pipeline stages together
func NewCoordinator(deduper Deduper, judge Judge, retriever ContentRetriever, delivery Delivery, opts Options) *Coordinator {
	if opts.MinRelevanceScore == 0 {
		opts.MinRelevanceScore = 6.0
	}
	if opts.MaxSendLimit <= 0 {
		opts.MaxSendLimit = 10
	}
	return &Coordinator{
		deduper:        deduper,
		judge:          judge,
		retriever:      retriever,
		delivery:       delivery,
		minScore:       opts.MinRelevanceScore,
		maxSendLimit:   opts.MaxSendLimit,
		contentEnabled: opts.ContentEnabled,
	}
}

// Run processes one collected batch end to end.
func (c *Coordinator) Run(ctx context.Context, items []news.RawItem) Result {
	result := Result{CollectedCount: len(items)}
	if len(items) == 0 {
		result.Message = "no news collected"
		log.Printf("📭 %s", result.Message)
		return result
	}

	// 1. Dedup
	merged := c.deduper.Merge(items)
	if dropped := len(items) - len(merged); dropped > 0 {
		metrics.Global.AddDuplicatesMerged(dropped)
	}
	log.Printf("🔄 Dedup: %d -> %d items", len(items), len(merged))

	// 2. Evaluate
	scored := c.evaluate(ctx, merged)
	log.Printf("🧠 Evaluation: %d/%d relevant", len(scored), len(merged))

	// 3. Select
	selected := c.selectTop(scored)
	result.ProcessedCount = len(selected)
	log.Printf("🏆 Selected top %d items", len(selected))

	if len(selected) == 0 {
		result.Message = "no relevant news after evaluation"
		return result
	}

	// 4 + 5. Content fetch and optimize
	outgoing := c.prepare(ctx, selected)
	log.Printf("✍️ Optimization: %d/%d payloads ready", len(outgoing), len(selected))

	if len(outgoing) == 0 {
		result.Message = "no payloads survived optimization"
		return result
	}

	// 6. Publish
	result.SentCount = c.delivery.PublishAll(ctx, outgoing)
	result.Message = fmt.Sprintf("collected %d, processed %d, sent %d",
		result.CollectedCount, result.ProcessedCount, result.SentCount)
	log.Printf("📊 %s", result.Message)
	return result
}

// Failed reports a batch that died before the pipeline ran; counts stay
// at zero and the message carries the cause.
func Failed(err error) Result {
	return Result{Message: err.Error()}
}

func (c *Coordinator) evaluate(ctx context.Context, items []news.RawItem) []news.ScoredItem {
	var kept []news.ScoredItem
	for _, item := range items {
		metrics.Global.IncrementItemsEvaluated()

		eval, ok := c.judge.Evaluate(ctx, item)
		if !ok {
			// No verdict. The item is excluded, not failed.
			log.Printf("🤷 No verdict for %q, skipping", item.Title)
			continue
		}
		if !eval.IsRelevant || eval.Score < c.minScore {
			log.Printf("⏬ Not relevant (%.1f): %s", eval.Score, item.Title)
			continue
		}

		metrics.Global.IncrementItemsRelevant()
		kept = append(kept, news.ScoredItem{
			RawItem:    item,
			AIScore:    eval.Score,
			IsRelevant: eval.IsRelevant,
		})
	}
	return kept
}

func (c *Coordinator) selectTop(items []news.ScoredItem) []news.ScoredItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].AIScore > items[j].AIScore
	})
	if len(items) > c.maxSendLimit {
		items = items[:c.maxSendLimit]
	}
	return items
}

// prepare fetches full text where enabled and runs the rewrite call,
// dropping items the rewrite judged unusable.
func (c *Coordinator) prepare(ctx context.Context, items []news.ScoredItem) []publish.Outgoing {
	var outgoing []publish.Outgoing
	for _, item := range items {
		text := ""
		if c.contentEnabled {
			text = c.retriever.Retrieve(ctx, item.URL)
		}
		if text == "" {
			text = item.BodyText()
		}

		payload, ok := c.judge.Optimize(ctx, text, item.URL)
		if !ok {
			log.Printf("❌ Optimization failed for %q, dropping", item.Title)
			continue
		}
		if payload.InvalidData {
			log.Printf("🗑️ Rewrite flagged unusable data: %s", item.Title)
			continue
		}
		if strings.TrimSpace(payload.Title) == "" || strings.TrimSpace(payload.Content) == "" {
			log.Printf("🗑️ Rewrite returned empty fields: %s", item.Title)
			continue
		}

		metrics.Global.IncrementItemsOptimized()
		outgoing = append(outgoing, publish.Outgoing{
			Payload: payload,
			Title:   item.Title,
			Link:    item.URL,
		})
	}
	return outgoing
}
