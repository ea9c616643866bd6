package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"nutrawire/internal/news"
	"nutrawire/internal/retry"
)

// WebhookSender delivers payloads to a bot webhook endpoint.
type WebhookSender struct {
	webhookURL string
	httpClient *http.Client
	retryCfg   retry.Config
}

// NewWebhookSender creates a sender for the given webhook URL
func NewWebhookSender(webhookURL string) *WebhookSender {
	return &WebhookSender{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryCfg: retry.Config{
			MaxAttempts: 3,
			Delay:       2 * time.Second,
			Exponential: true,
		},
	}
}

// Send posts the payload, retrying transient failures.
func (s *WebhookSender) Send(ctx context.Context, payload news.Payload) error {
	return retry.WithRetry(ctx, s.retryCfg, func() error {
		return s.sendOnce(ctx, payload)
	})
}

func (s *WebhookSender) sendOnce(ctx context.Context, payload news.Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error make JSON: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error HTTP request: %v", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Printf("Warning: failed to close response body: %v", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook error: status %d", resp.StatusCode)
	}

	// The bot endpoint wraps delivery status in its own envelope, so a
	// 200 alone does not mean the message went through.
	var envelope struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("error decode webhook response: %v", err)
	}
	if envelope.Code != 0 {
		return fmt.Errorf("webhook rejected message: code %d msg %q", envelope.Code, envelope.Msg)
	}

	return nil
}
