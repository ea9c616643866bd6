package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	// A record blocks re-sending for this long.
	blockWindow = 24 * time.Hour
	// Records older than this are dropped on the next write.
	purgeAfter = 7 * 24 * time.Hour
)

// SentRecord is one delivered item in the ledger file.
type SentRecord struct {
	Fingerprint string    `json:"fingerprint"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	SentAt      time.Time `json:"sent_at"`
}

// Ledger keeps fingerprints of delivered items in a JSON file so the
// same story is not pushed twice across runs.
type Ledger struct {
	filePath string
	records  map[string]SentRecord
	mu       sync.RWMutex
	now      func() time.Time
}

// NewLedger creates a ledger backed by the given file
func NewLedger(filePath string) *Ledger {
	return &Ledger{
		filePath: filePath,
		records:  make(map[string]SentRecord),
		now:      time.Now,
	}
}

// Fingerprint creates a stable id for a story from its title and link
func Fingerprint(title, link string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	normalized = strings.Join(strings.Fields(normalized), " ")

	h := sha256.New()
	h.Write([]byte(normalized + "|" + link))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Load reads the ledger file. A missing file is not an error.
func (l *Ledger) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := os.Stat(l.filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return fmt.Errorf("failed to read ledger file: %v", err)
	}

	if len(data) == 0 {
		return nil
	}

	var records []SentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to unmarshal ledger: %v", err)
	}

	cutoff := l.now().Add(-purgeAfter)
	for _, rec := range records {
		if rec.SentAt.After(cutoff) {
			l.records[rec.Fingerprint] = rec
		}
	}

	return nil
}

// AlreadySent reports whether the fingerprint was delivered within the
// block window.
func (l *Ledger) AlreadySent(fingerprint string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, exists := l.records[fingerprint]
	if !exists {
		return false
	}

	return rec.SentAt.After(l.now().Add(-blockWindow))
}

// MarkSent records a delivery and rewrites the file, dropping records
// older than the purge horizon in the same write.
func (l *Ledger) MarkSent(fingerprint, title, link string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records[fingerprint] = SentRecord{
		Fingerprint: fingerprint,
		Title:       title,
		Link:        link,
		SentAt:      l.now(),
	}

	cutoff := l.now().Add(-purgeAfter)
	records := make([]SentRecord, 0, len(l.records))
	for fp, rec := range l.records {
		if rec.SentAt.Before(cutoff) {
			delete(l.records, fp)
			continue
		}
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %v", err)
	}

	if err := os.WriteFile(l.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write ledger file: %v", err)
	}

	return nil
}

// GetStats returns ledger statistics
func (l *Ledger) GetStats() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return map[string]int{
		"total_records": len(l.records),
	}
}
