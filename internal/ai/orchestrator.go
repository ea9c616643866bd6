package ai

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"nutrawire/internal/metrics"
	"nutrawire/internal/news"
)

const (
	// Total attempts per operation, regardless of how many providers are
	// configured. With preference [A,B] the attempt order is A,B,A,B.
	maxTotalAttempts = 4

	defaultAttemptDelay = 2 * time.Second

	highScoreWarnLevel = 8.0
)

// Evaluation is the judge's verdict for one item.
type Evaluation struct {
	Score      float64
	IsRelevant bool
}

// Orchestrator runs evaluate and optimize calls against an ordered provider
// preference list with round-robin failover.
type Orchestrator struct {
	providers []Provider

	evaluatePrompt string
	optimizePrompt string
	domainKeywords []string

	attemptDelay    time.Duration
	evaluateTimeout time.Duration
	optimizeTimeout time.Duration

	sleep func(time.Duration)
}

// Options tunes the orchestrator; zero values fall back to defaults.
type Options struct {
	EvaluatePrompt  string
	OptimizePrompt  string
	DomainKeywords  []string
	AttemptDelay    time.Duration
	EvaluateTimeout time.Duration
	OptimizeTimeout time.Duration
}

func NewOrchestrator(providers []Provider, opts Options) *Orchestrator {
	o := &Orchestrator{
		providers:       providers,
		evaluatePrompt:  opts.EvaluatePrompt,
		optimizePrompt:  opts.OptimizePrompt,
		domainKeywords:  opts.DomainKeywords,
		attemptDelay:    opts.AttemptDelay,
		evaluateTimeout: opts.EvaluateTimeout,
		optimizeTimeout: opts.OptimizeTimeout,
		sleep:           time.Sleep,
	}
	if o.attemptDelay <= 0 {
		o.attemptDelay = defaultAttemptDelay
	}
	if o.evaluateTimeout <= 0 {
		o.evaluateTimeout = 30 * time.Second
	}
	if o.optimizeTimeout <= 0 {
		o.optimizeTimeout = 60 * time.Second
	}
	return o
}

// Evaluate asks the judge for a relevance verdict. The second return is
// false when all attempts fail: the caller treats that as "no verdict",
// never as an error.
func (o *Orchestrator) Evaluate(ctx context.Context, item news.RawItem) (Evaluation, bool) {
	body := item.BodyText()
	prompt := renderPrompt(o.evaluatePrompt, map[string]string{
		"{title}":   item.Title,
		"{content}": body,
		"{link}":    item.URL,
	})

	var verdict struct {
		RelevanceScore *float64 `json:"relevance_score"`
		IsRelevant     *bool    `json:"is_relevant"`
	}
	ok := o.runFailover(ctx, prompt, o.evaluateTimeout, func(raw []byte) bool {
		verdict.RelevanceScore = nil
		verdict.IsRelevant = nil
		if err := json.Unmarshal(raw, &verdict); err != nil {
			return false
		}
		return verdict.RelevanceScore != nil && verdict.IsRelevant != nil
	})
	if !ok {
		return Evaluation{}, false
	}

	eval := Evaluation{Score: *verdict.RelevanceScore, IsRelevant: *verdict.IsRelevant}
	o.warnOnSuspiciousScore(item.Title, body, eval.Score)
	return eval, true
}

// Optimize rewrites raw article text into a delivery payload. A false second
// return means every attempt failed and the item should be dropped.
func (o *Orchestrator) Optimize(ctx context.Context, rawText, link string) (news.Payload, bool) {
	prompt := renderPrompt(o.optimizePrompt, map[string]string{
		"{raw_content}":   rawText,
		"{original_link}": link,
	})

	var payload news.Payload
	ok := o.runFailover(ctx, prompt, o.optimizeTimeout, func(raw []byte) bool {
		payload = news.Payload{}
		return json.Unmarshal(raw, &payload) == nil
	})
	if !ok {
		return news.Payload{}, false
	}

	if payload.MessageType == "" {
		payload.MessageType = "text"
	}
	if payload.OriginalLink == "" {
		payload.OriginalLink = link
	}
	return payload, true
}

// runFailover makes exactly maxTotalAttempts attempts, choosing the provider
// by attempt index modulo the preference-list length and waiting a fixed
// delay before every attempt except the first. The first attempt whose
// response yields a JSON object accepted by parse wins.
func (o *Orchestrator) runFailover(ctx context.Context, prompt string, timeout time.Duration, parse func(raw []byte) bool) bool {
	if len(o.providers) == 0 {
		log.Printf("ai: no providers configured")
		return false
	}

	for attempt := 0; attempt < maxTotalAttempts; attempt++ {
		provider := o.providers[attempt%len(o.providers)]

		if attempt > 0 {
			o.sleep(o.attemptDelay)
		}

		metrics.Global.IncrementAIAttempts()

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		text, err := provider.Generate(callCtx, prompt)
		cancel()
		if err != nil {
			log.Printf("ai: %s attempt %d/%d failed: %v", provider.Name(), attempt+1, maxTotalAttempts, err)
			continue
		}

		raw, err := extractJSON(text)
		if err != nil {
			log.Printf("ai: %s attempt %d/%d returned unparsable text: %v", provider.Name(), attempt+1, maxTotalAttempts, err)
			continue
		}
		if !parse(raw) {
			log.Printf("ai: %s attempt %d/%d returned JSON without the expected keys", provider.Name(), attempt+1, maxTotalAttempts)
			continue
		}

		log.Printf("ai: %s succeeded on attempt %d/%d", provider.Name(), attempt+1, maxTotalAttempts)
		return true
	}

	log.Printf("ai: all %d attempts failed", maxTotalAttempts)
	return false
}

// warnOnSuspiciousScore logs when the judge hands out a high score to an
// item with no domain keyword in sight. Observability only, the verdict
// stands.
func (o *Orchestrator) warnOnSuspiciousScore(title, body string, score float64) {
	if score < highScoreWarnLevel || len(o.domainKeywords) == 0 {
		return
	}
	fullText := strings.ToLower(title + " " + body)
	for _, kw := range o.domainKeywords {
		if strings.Contains(fullText, strings.ToLower(kw)) {
			return
		}
	}
	log.Printf("ai: ⚠️ score %.1f for item with no domain keywords: %s", score, shortenText(title, 60))
}

func renderPrompt(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func shortenText(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
