package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nutrawire/internal/news"
	"nutrawire/internal/retry"
)

func quickRetry() retry.Config {
	return retry.Config{MaxAttempts: 2, Delay: 0}
}

func TestWebhookSendOK(t *testing.T) {
	var got news.Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"code": 0, "msg": "success"})
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL)
	s.retryCfg = quickRetry()

	payload := news.Payload{MessageType: "text", Title: "T", Content: "C", OriginalLink: "https://example.com"}
	if err := s.Send(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "T" || got.OriginalLink != "https://example.com" {
		t.Errorf("payload not delivered intact: %+v", got)
	}
}

func TestWebhookRejectionCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"code": 19001, "msg": "param invalid"})
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL)
	s.retryCfg = quickRetry()

	err := s.Send(context.Background(), news.Payload{MessageType: "text", Title: "T"})
	if err == nil {
		t.Fatalf("non-zero code should be an error")
	}
}

func TestWebhookRetriesTransientFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"code": 0})
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL)
	s.retryCfg = quickRetry()

	if err := s.Send(context.Background(), news.Payload{MessageType: "text", Title: "T"}); err != nil {
		t.Fatalf("second attempt should succeed: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
