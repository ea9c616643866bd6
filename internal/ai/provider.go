package ai

import (
	"context"
	"fmt"
	"math/rand"
)

// Provider is one AI backend behind the failover protocol. Generate sends a
// rendered prompt and returns the provider's free-form text response.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// keyPool holds the API keys configured for one provider. Every call draws a
// random key so quota spreads across the pool.
type keyPool struct {
	keys []string
}

func (p keyPool) pick() (string, error) {
	if len(p.keys) == 0 {
		return "", fmt.Errorf("no API keys configured")
	}
	return p.keys[rand.Intn(len(p.keys))], nil
}
