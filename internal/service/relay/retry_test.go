package relay

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/sandevgo/rolecast/internal/core"
)

type scriptedProvider struct {
	replies []string
	err     error
	calls   int
	temps   []float64
	stream  io.ReadCloser
}

func (p *scriptedProvider) Chat(ctx context.Context, req core.ChatRequest) (core.Message, error) {
	p.temps = append(p.temps, req.Temperature)
	p.calls++
	if p.err != nil {
		return core.Message{}, p.err
	}
	reply := p.replies[(p.calls-1)%len(p.replies)]
	return core.Message{Role: core.RoleAssistant, Content: reply}, nil
}

func (p *scriptedProvider) ChatStream(ctx context.Context, req core.ChatRequest) (io.ReadCloser, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.stream, nil
}

type retryPolicy struct {
	retries, minWords int
	step              float64
}

func (p retryPolicy) GetMaxRetries() int          { return p.retries }
func (p retryPolicy) GetMinResponseWords() int    { return p.minWords }
func (p retryPolicy) GetTemperatureStep() float64 { return p.step }

// goodReply passes the quality gate: long enough and carries an action.
var goodReply = "*She straightens slowly, eyes narrowing.* " + strings.Repeat("word ", 60)

func TestRetry_AcceptsGoodResponseImmediately(t *testing.T) {
	provider := &scriptedProvider{replies: []string{goodReply}}
	rc := NewRetryController(provider, retryPolicy{retries: 5, minWords: 50, step: 0.05})

	msg, err := rc.Chat(context.Background(), core.ChatRequest{Temperature: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	if provider.calls != 1 {
		t.Errorf("expected 1 call, got %d", provider.calls)
	}
	if msg.Content != goodReply {
		t.Error("unexpected response content")
	}
}

func TestRetry_ExhaustsBoundThenReturns(t *testing.T) {
	// 10 words, no action marker: fails the gate every time.
	bad := "short answer with exactly ten words and nothing else here"
	provider := &scriptedProvider{replies: []string{bad}}
	rc := NewRetryController(provider, retryPolicy{retries: 5, minWords: 50, step: 0.05})

	msg, err := rc.Chat(context.Background(), core.ChatRequest{Temperature: 0.9})
	if err != nil {
		t.Fatal(err)
	}
	if provider.calls != 6 {
		t.Fatalf("expected initial call + 5 retries = 6 calls, got %d", provider.calls)
	}
	if msg.Content != bad {
		t.Error("final attempt's response must be returned unconditionally")
	}

	// Temperature escalates 0.05 per retry, clamped at 1.0.
	want := []float64{0.90, 0.95, 1.00, 1.00, 1.00, 1.00}
	for i, temp := range provider.temps {
		if math.Abs(temp-want[i]) > 1e-9 {
			t.Errorf("attempt %d temperature = %v, want %v", i, temp, want[i])
		}
	}
}

func TestRetry_TransportErrorNotRetried(t *testing.T) {
	provider := &scriptedProvider{err: &core.UpstreamError{StatusCode: 502, Body: "bad gateway"}}
	rc := NewRetryController(provider, retryPolicy{retries: 5, minWords: 50, step: 0.05})

	_, err := rc.Chat(context.Background(), core.ChatRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ue *core.UpstreamError
	if !errors.As(err, &ue) {
		t.Errorf("expected UpstreamError, got %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("transport failure retried: %d calls", provider.calls)
	}
}

func TestRetry_MissingActionMarkerFailsGate(t *testing.T) {
	longButFlat := strings.Repeat("plain prose without any stage direction at all here ", 10)
	provider := &scriptedProvider{replies: []string{longButFlat, goodReply}}
	rc := NewRetryController(provider, retryPolicy{retries: 5, minWords: 50, step: 0.05})

	msg, err := rc.Chat(context.Background(), core.ChatRequest{Temperature: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected a single retry, got %d calls", provider.calls)
	}
	if msg.Content != goodReply {
		t.Error("expected the in-character retry response")
	}
}
