package news

import "time"

// SourceType tells which fetcher produced the item.
type SourceType string

const (
	SourceRSS        SourceType = "RSS"
	SourceMediastack SourceType = "Mediastack"
	SourceNewsAPI    SourceType = "NewsAPI"
	SourceMerged     SourceType = "Merged"
)

// RawItem is one ingested story before processing. Fetchers fill Title and
// URL at minimum; later stages only add fields, never rewrite these.
type RawItem struct {
	Title       string
	Description string
	Content     string
	Summary     string
	URL         string
	PublishedAt time.Time
	Source      string
	SourceType  SourceType

	// Set only on merged items (MergedCount >= 2).
	MergedCount     int
	OriginalSources []string
}

// BodyText returns the best available body by priority:
// content, then description, then summary, then empty string.
func (it RawItem) BodyText() string {
	if s := trimmed(it.Content); s != "" {
		return s
	}
	if s := trimmed(it.Description); s != "" {
		return s
	}
	return trimmed(it.Summary)
}

// ScoredItem is a RawItem plus the AI verdict, set once by evaluation.
type ScoredItem struct {
	RawItem
	AIScore    float64
	IsRelevant bool
}

// Payload is a rewritten story ready for delivery. InvalidData means the AI
// judged the source text unusable and the item must be dropped.
type Payload struct {
	MessageType  string `json:"message_type"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	OriginalLink string `json:"original_link"`
	InvalidData  bool   `json:"invalid_data,omitempty"`
}
