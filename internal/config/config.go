package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceConfig is one REST news source (Mediastack, NewsAPI).
type SourceConfig struct {
	Enabled  bool   `yaml:"enabled"`
	APIKey   string `yaml:"api_key"`
	Category string `yaml:"category"`
	Limit    int    `yaml:"limit"`
}

// PromptsConfig holds the templates sent to the AI providers.
// Placeholders: {title}, {content}, {link}, {raw_content}, {original_link}.
type PromptsConfig struct {
	Evaluation   string `yaml:"evaluation_prompt"`
	Optimization string `yaml:"optimization_prompt"`
}

// AIConfig configures providers and judging thresholds.
type AIConfig struct {
	Preference         []string      `yaml:"ai_preference"`
	GeminiAPIKeys      []string      `yaml:"gemini_api_keys"`
	GeminiModel        string        `yaml:"gemini_model"`
	GeminiEnableSearch bool          `yaml:"gemini_enable_search"`
	OpenRouterAPIKeys  []string      `yaml:"openrouter_api_keys"`
	OpenRouterModel    string        `yaml:"openrouter_model"`
	MinRelevanceScore  float64       `yaml:"min_relevance_score"`
	DomainKeywords     []string      `yaml:"domain_keywords"`
	Prompts            PromptsConfig `yaml:"prompts"`
}

// ExtractionConfig controls full-text retrieval before optimization.
type ExtractionConfig struct {
	Enabled         bool   `yaml:"enabled"`
	FirecrawlAPIKey string `yaml:"firecrawl_api_key"`
}

// Config is the full application configuration, loaded from YAML with
// environment overrides on top.
type Config struct {
	RSSFeeds            []string         `yaml:"rss_feeds"`
	TimeWindowHours     int              `yaml:"time_window_hours"`
	Mediastack          SourceConfig     `yaml:"mediastack"`
	NewsAPI             SourceConfig     `yaml:"newsapi"`
	AI                  AIConfig         `yaml:"ai"`
	ContentExtraction   ExtractionConfig `yaml:"content_extraction"`
	SimilarityThreshold float64          `yaml:"similarity_threshold"`
	MaxSendLimit        int              `yaml:"max_send_limit"`
	WebhookURL          string           `yaml:"webhook_url"`
	LedgerFilePath      string           `yaml:"ledger_file_path"`
	MonitorAddr         string           `yaml:"monitor_addr"`
	Debug               bool             `yaml:"-"`
}

// Load reads the YAML file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		// Default values
		TimeWindowHours:     24,
		SimilarityThreshold: 0.6,
		MaxSendLimit:        10,
		LedgerFilePath:      "sent_news.json",
		MonitorAddr:         ":8080",
		AI: AIConfig{
			Preference:        []string{"openrouter", "gemini"},
			MinRelevanceScore: 6.0,
		},
		ContentExtraction: ExtractionConfig{Enabled: true},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	cfg.applyEnv()

	return cfg, cfg.Validate()
}

// applyEnv lets deployment secrets override the file.
func (c *Config) applyEnv() {
	c.WebhookURL = getEnvOrDefault("WEBHOOK_URL", c.WebhookURL)
	c.LedgerFilePath = getEnvOrDefault("LEDGER_FILE_PATH", c.LedgerFilePath)
	c.MonitorAddr = getEnvOrDefault("MONITOR_ADDR", c.MonitorAddr)

	if keys := os.Getenv("GEMINI_API_KEYS"); keys != "" {
		c.AI.GeminiAPIKeys = splitList(keys)
	}
	if keys := os.Getenv("OPENROUTER_API_KEYS"); keys != "" {
		c.AI.OpenRouterAPIKeys = splitList(keys)
	}
	if key := os.Getenv("FIRECRAWL_API_KEY"); key != "" {
		c.ContentExtraction.FirecrawlAPIKey = key
	}
	if key := os.Getenv("MEDIASTACK_API_KEY"); key != "" {
		c.Mediastack.APIKey = key
	}
	if key := os.Getenv("NEWSAPI_API_KEY"); key != "" {
		c.NewsAPI.APIKey = key
	}

	if limit := os.Getenv("MAX_SEND_LIMIT"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val > 0 {
			c.MaxSendLimit = val
		}
	}
	if v := os.Getenv("MIN_RELEVANCE_SCORE"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val > 0 {
			c.AI.MinRelevanceScore = val
		}
	}
	if v := os.Getenv("SIMILARITY_THRESHOLD"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val > 0 && val <= 1 {
			c.SimilarityThreshold = val
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		c.Debug = true
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList parses a comma-separated env value into trimmed entries.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate checks the keys a run cannot start without.
func (c *Config) Validate() error {
	if c.WebhookURL == "" {
		return fmt.Errorf("webhook_url is required")
	}
	if len(c.RSSFeeds) == 0 && !c.Mediastack.Enabled && !c.NewsAPI.Enabled {
		return fmt.Errorf("at least one news source must be configured")
	}
	if len(c.AI.Preference) == 0 {
		return fmt.Errorf("ai_preference must name at least one provider")
	}
	for _, name := range c.AI.Preference {
		switch name {
		case "gemini", "openrouter":
		default:
			return fmt.Errorf("unknown AI provider %q in ai_preference", name)
		}
	}
	if c.AI.Prompts.Evaluation == "" {
		return fmt.Errorf("ai.prompts.evaluation_prompt is required")
	}
	if c.AI.Prompts.Optimization == "" {
		return fmt.Errorf("ai.prompts.optimization_prompt is required")
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in (0, 1]")
	}
	if c.MaxSendLimit <= 0 {
		return fmt.Errorf("max_send_limit must be positive")
	}
	return nil
}
