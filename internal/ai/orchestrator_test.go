package ai

import (
	"context"
	"fmt"
	"testing"
	"time"

	"nutrawire/internal/news"
)

// fakeProvider records every call and replays canned responses in order.
type fakeProvider struct {
	name      string
	responses []string
	errs      []error
	calls     int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", fmt.Errorf("no canned response for call %d", i)
}

func newTestOrchestrator(providers ...Provider) (*Orchestrator, *[]time.Duration) {
	o := NewOrchestrator(providers, Options{
		EvaluatePrompt: "judge {title} {content} {link}",
		OptimizePrompt: "rewrite {raw_content} {original_link}",
	})
	var sleeps []time.Duration
	o.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return o, &sleeps
}

func TestEvaluateAlternatesProviders(t *testing.T) {
	bad := `not json at all`
	good := `{"relevance_score": 7.5, "is_relevant": true}`
	a := &fakeProvider{name: "a", responses: []string{bad, bad}}
	b := &fakeProvider{name: "b", responses: []string{bad, good}}
	o, sleeps := newTestOrchestrator(a, b)

	eval, ok := o.Evaluate(context.Background(), news.RawItem{Title: "t"})
	if !ok {
		t.Fatalf("expected a verdict")
	}
	if eval.Score != 7.5 || !eval.IsRelevant {
		t.Errorf("verdict = %+v, want score 7.5 relevant", eval)
	}

	// Order must be a,b,a,b: a called twice, b called twice.
	if a.calls != 2 || b.calls != 2 {
		t.Errorf("calls a=%d b=%d, want 2 and 2", a.calls, b.calls)
	}
	// Delay before every attempt except the first.
	if len(*sleeps) != 3 {
		t.Errorf("slept %d times, want 3", len(*sleeps))
	}
}

func TestEvaluateStopsAtFirstSuccess(t *testing.T) {
	a := &fakeProvider{name: "a", responses: []string{`{"relevance_score": 9, "is_relevant": true}`}}
	b := &fakeProvider{name: "b"}
	o, sleeps := newTestOrchestrator(a, b)

	if _, ok := o.Evaluate(context.Background(), news.RawItem{Title: "t"}); !ok {
		t.Fatalf("expected a verdict")
	}
	if a.calls != 1 || b.calls != 0 {
		t.Errorf("calls a=%d b=%d, want success on the very first attempt", a.calls, b.calls)
	}
	if len(*sleeps) != 0 {
		t.Errorf("first attempt must not wait, slept %d times", len(*sleeps))
	}
}

func TestEvaluateNeverExceedsFourAttempts(t *testing.T) {
	a := &fakeProvider{name: "a", responses: []string{"x", "x", "x", "x", "x", "x"}}
	b := &fakeProvider{name: "b", responses: []string{"x", "x", "x", "x", "x", "x"}}
	o, _ := newTestOrchestrator(a, b)

	if _, ok := o.Evaluate(context.Background(), news.RawItem{Title: "t"}); ok {
		t.Fatalf("expected no verdict")
	}
	if got := a.calls + b.calls; got != 4 {
		t.Errorf("total attempts = %d, want exactly 4", got)
	}
}

func TestEvaluateSingleProviderGetsAllAttempts(t *testing.T) {
	a := &fakeProvider{name: "a", responses: []string{"x", "x", "x", "x"}}
	o, _ := newTestOrchestrator(a)

	if _, ok := o.Evaluate(context.Background(), news.RawItem{Title: "t"}); ok {
		t.Fatalf("expected no verdict")
	}
	if a.calls != 4 {
		t.Errorf("calls = %d, want 4", a.calls)
	}
}

func TestEvaluateRejectsObjectWithoutExpectedKeys(t *testing.T) {
	missing := `{"something_else": 1}`
	good := `{"relevance_score": 6, "is_relevant": false}`
	a := &fakeProvider{name: "a", responses: []string{missing, good}}
	o, _ := newTestOrchestrator(a)

	eval, ok := o.Evaluate(context.Background(), news.RawItem{Title: "t"})
	if !ok {
		t.Fatalf("expected the second attempt to succeed")
	}
	if a.calls != 2 {
		t.Errorf("calls = %d, want 2 (first object lacked keys)", a.calls)
	}
	if eval.IsRelevant {
		t.Errorf("verdict = %+v, want not relevant", eval)
	}
}

func TestEvaluateProviderErrorsAreAttempts(t *testing.T) {
	a := &fakeProvider{name: "a", errs: []error{fmt.Errorf("timeout"), fmt.Errorf("timeout")},
		responses: []string{"", "", "x", "x"}}
	o, _ := newTestOrchestrator(a)

	if _, ok := o.Evaluate(context.Background(), news.RawItem{Title: "t"}); ok {
		t.Fatalf("expected no verdict")
	}
	if a.calls != 4 {
		t.Errorf("calls = %d, provider errors must count as attempts", a.calls)
	}
}

func TestOptimizeFillsDefaults(t *testing.T) {
	a := &fakeProvider{name: "a", responses: []string{
		"```json\n{\"title\": \"Rewritten\", \"content\": \"Body\"}\n```",
	}}
	o, _ := newTestOrchestrator(a)

	payload, ok := o.Optimize(context.Background(), "raw text", "https://example.com/story")
	if !ok {
		t.Fatalf("expected a payload")
	}
	if payload.MessageType != "text" {
		t.Errorf("message type = %q, want default \"text\"", payload.MessageType)
	}
	if payload.OriginalLink != "https://example.com/story" {
		t.Errorf("original link = %q, want the source link", payload.OriginalLink)
	}
	if payload.Title != "Rewritten" || payload.Content != "Body" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestOptimizeAllAttemptsFail(t *testing.T) {
	a := &fakeProvider{name: "a", responses: []string{"x", "{broken", "x", "x"}}
	o, _ := newTestOrchestrator(a)

	if _, ok := o.Optimize(context.Background(), "raw", "link"); ok {
		t.Fatalf("expected failure after 4 unparsable responses")
	}
}

func TestOptimizeCarriesInvalidDataFlag(t *testing.T) {
	a := &fakeProvider{name: "a", responses: []string{`{"invalid_data": true}`}}
	o, _ := newTestOrchestrator(a)

	payload, ok := o.Optimize(context.Background(), "raw", "link")
	if !ok {
		t.Fatalf("expected a parsed payload")
	}
	if !payload.InvalidData {
		t.Errorf("invalid_data flag lost: %+v", payload)
	}
}
