package publish

import (
	"context"
	"log"
	"time"

	"nutrawire/internal/metrics"
	"nutrawire/internal/news"
	"nutrawire/internal/storage"
)

// Pause between consecutive deliveries so the webhook is not flooded.
const interSendPause = 2 * time.Second

// Sender is anything that can deliver a single payload.
type Sender interface {
	Send(ctx context.Context, payload news.Payload) error
}

// Outgoing pairs a ready payload with the item it came from, which the
// ledger needs for the fingerprint.
type Outgoing struct {
	Payload news.Payload
	Title   string
	Link    string
}

// Publisher delivers payloads through a Sender and records each
// delivery in the ledger so reruns skip it.
type Publisher struct {
	sender Sender
	ledger *storage.Ledger
	pause  time.Duration
	sleep  func(time.Duration)
}

// NewPublisher creates a publisher backed by the given sender and ledger
func NewPublisher(sender Sender, ledger *storage.Ledger) *Publisher {
	return &Publisher{
		sender: sender,
		ledger: ledger,
		pause:  interSendPause,
		sleep:  time.Sleep,
	}
}

// PublishAll sends each payload in order and returns how many went out.
// An item already in the ledger counts as handled, not as a failure.
func (p *Publisher) PublishAll(ctx context.Context, items []Outgoing) int {
	sent := 0
	for i, item := range items {
		if i > 0 {
			p.sleep(p.pause)
		}

		fingerprint := storage.Fingerprint(item.Title, item.Link)
		if p.ledger.AlreadySent(fingerprint) {
			log.Printf("⏭️ Skip already sent: %s", shortenTitle(item.Title))
			metrics.Global.IncrementMessagesSkipped()
			sent++
			continue
		}

		if err := p.sender.Send(ctx, item.Payload); err != nil {
			log.Printf("❌ Failed to send %q: %v", shortenTitle(item.Title), err)
			continue
		}

		log.Printf("✅ Sent: %s", shortenTitle(item.Title))
		metrics.Global.IncrementMessagesSent()
		sent++

		// Delivery already happened, so a ledger write failure only
		// risks a duplicate on the next run.
		if err := p.ledger.MarkSent(fingerprint, item.Title, item.Link); err != nil {
			log.Printf("Warning: failed to update sent ledger: %v", err)
		}
	}
	return sent
}

func shortenTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 60 {
		return title
	}
	return string(runes[:60]) + "..."
}
