package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"nutrawire/internal/ai"
	"nutrawire/internal/config"
	"nutrawire/internal/extract"
	"nutrawire/internal/fetch"
	"nutrawire/internal/logger"
	"nutrawire/internal/metrics"
	"nutrawire/internal/news"
	"nutrawire/internal/pipeline"
	"nutrawire/internal/publish"
	"nutrawire/internal/storage"
)

// Run executes one full collection and publishing cycle.
func Run(ctx context.Context, cfg *config.Config) pipeline.Result {
	logger.Init(cfg.Debug)
	start := time.Now()

	coordinator, err := buildCoordinator(cfg)
	if err != nil {
		log.Printf("❌ Startup failed: %v", err)
		metrics.Global.SetError(err.Error())
		return pipeline.Failed(err)
	}

	items := fetch.CollectAll(ctx, buildSources(cfg))
	log.Printf("📥 Collected %d news items", len(items))

	result := coordinator.Run(ctx, items)

	metrics.Global.RecordRun(time.Since(start))
	log.Printf("✅ Run finished in %v: %s", time.Since(start).Round(time.Millisecond), result.Message)
	return result
}

func buildSources(cfg *config.Config) []fetch.Source {
	var sources []fetch.Source
	if len(cfg.RSSFeeds) > 0 {
		sources = append(sources, fetch.NewRSSSource(cfg.RSSFeeds, cfg.TimeWindowHours))
	}
	if cfg.Mediastack.Enabled {
		sources = append(sources, fetch.NewMediastackSource(
			cfg.Mediastack.APIKey, cfg.Mediastack.Category, cfg.Mediastack.Limit, cfg.TimeWindowHours))
	}
	if cfg.NewsAPI.Enabled {
		sources = append(sources, fetch.NewNewsAPISource(
			cfg.NewsAPI.APIKey, cfg.NewsAPI.Category, cfg.NewsAPI.Limit, cfg.TimeWindowHours))
	}
	return sources
}

func buildCoordinator(cfg *config.Config) (*pipeline.Coordinator, error) {
	providers, err := buildProviders(cfg)
	if err != nil {
		return nil, err
	}

	orchestrator := ai.NewOrchestrator(providers, ai.Options{
		EvaluatePrompt: cfg.AI.Prompts.Evaluation,
		OptimizePrompt: cfg.AI.Prompts.Optimization,
		DomainKeywords: cfg.AI.DomainKeywords,
	})

	retriever := extract.NewRetriever(
		extract.NewFirecrawlClient(cfg.ContentExtraction.FirecrawlAPIKey, ""),
		extract.NewScraper(),
	)

	ledger := storage.NewLedger(cfg.LedgerFilePath)
	if err := ledger.Load(); err != nil {
		log.Printf("⚠️ Ledger load failed, starting empty: %v", err)
	}

	publisher := publish.NewPublisher(publish.NewWebhookSender(cfg.WebhookURL), ledger)

	return pipeline.NewCoordinator(
		news.NewMerger(cfg.SimilarityThreshold),
		orchestrator,
		retriever,
		publisher,
		pipeline.Options{
			MinRelevanceScore: cfg.AI.MinRelevanceScore,
			MaxSendLimit:      cfg.MaxSendLimit,
			ContentEnabled:    cfg.ContentExtraction.Enabled,
		},
	), nil
}

func buildProviders(cfg *config.Config) ([]ai.Provider, error) {
	providers := make([]ai.Provider, 0, len(cfg.AI.Preference))
	for _, name := range cfg.AI.Preference {
		switch name {
		case "gemini":
			providers = append(providers, ai.NewGeminiProvider(
				cfg.AI.GeminiAPIKeys, cfg.AI.GeminiModel, cfg.AI.GeminiEnableSearch))
		case "openrouter":
			providers = append(providers, ai.NewOpenRouterProvider(
				cfg.AI.OpenRouterAPIKeys, "", cfg.AI.OpenRouterModel))
		default:
			return nil, fmt.Errorf("unknown AI provider %q", name)
		}
	}
	return providers, nil
}
