package metrics

import (
	"sync"
	"time"
)

// Metrics collects pipeline counters for the monitoring endpoints.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	ItemsCollected    int64
	DuplicatesMerged  int64
	ItemsEvaluated    int64
	ItemsRelevant     int64
	ItemsOptimized    int64
	MessagesSent      int64
	MessagesSkipped   int64 // ledger hits
	AIAttempts        int64
	ExtractionsFailed int64

	// Timings
	LastRunDuration time.Duration
	TotalRunTime    time.Duration
	RunCount        int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddItemsCollected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsCollected += int64(n)
}

func (m *Metrics) AddDuplicatesMerged(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesMerged += int64(n)
}

func (m *Metrics) IncrementItemsEvaluated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsEvaluated++
}

func (m *Metrics) IncrementItemsRelevant() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsRelevant++
}

func (m *Metrics) IncrementItemsOptimized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsOptimized++
}

func (m *Metrics) IncrementMessagesSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesSent++
}

func (m *Metrics) IncrementMessagesSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesSkipped++
}

func (m *Metrics) IncrementAIAttempts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AIAttempts++
}

func (m *Metrics) IncrementExtractionsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExtractionsFailed++
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunDuration = duration
	m.TotalRunTime += duration
	m.RunCount++
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	avg := time.Duration(0)
	if m.RunCount > 0 {
		avg = m.TotalRunTime / time.Duration(m.RunCount)
	}

	return map[string]interface{}{
		"items_collected":      m.ItemsCollected,
		"duplicates_merged":    m.DuplicatesMerged,
		"items_evaluated":      m.ItemsEvaluated,
		"items_relevant":       m.ItemsRelevant,
		"items_optimized":      m.ItemsOptimized,
		"messages_sent":        m.MessagesSent,
		"messages_skipped":     m.MessagesSkipped,
		"ai_attempts":          m.AIAttempts,
		"extractions_failed":   m.ExtractionsFailed,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"avg_run_duration_ms":  avg.Milliseconds(),
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
