package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sandevgo/rolecast/internal/core"
	"github.com/sandevgo/rolecast/internal/service/command"
	"github.com/sandevgo/rolecast/internal/service/memory"
	"github.com/sandevgo/rolecast/internal/service/relay"
	"github.com/sandevgo/rolecast/internal/service/sanitize"
)

// reply long and marked enough to clear the quality gate on the first try.
var fakeReply = "*He leans back in the creaking chair.* " + strings.Repeat("so it goes ", 20)

type fakeProvider struct {
	calls int
	err   error
	sse   string
}

func (p *fakeProvider) Chat(ctx context.Context, req core.ChatRequest) (core.Message, error) {
	p.calls++
	if p.err != nil {
		return core.Message{}, p.err
	}
	return core.Message{Role: core.RoleAssistant, Content: fakeReply}, nil
}

func (p *fakeProvider) ChatStream(ctx context.Context, req core.ChatRequest) (io.ReadCloser, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return io.NopCloser(strings.NewReader(p.sse)), nil
}

type testPolicy struct{}

func (testPolicy) GetSummaryTrigger() int      { return 60 }
func (testPolicy) GetSummaryCooldown() int     { return 40 }
func (testPolicy) GetRecentTail() int          { return 20 }
func (testPolicy) GetMaxWindow() int           { return 60 }
func (testPolicy) GetMaxMessageChars() int     { return 8000 }
func (testPolicy) GetMaxRetries() int          { return 5 }
func (testPolicy) GetMinResponseWords() int    { return 10 }
func (testPolicy) GetTemperatureStep() float64 { return 0.05 }

func newTestServer(t *testing.T, provider core.Provider) (*httptest.Server, core.MemoryStore) {
	t.Helper()

	store := memory.NewMapStore(memory.DefaultPersona)
	policy := testPolicy{}
	rly := relay.New(
		provider,
		store,
		sanitize.New(policy.GetMaxMessageChars(), policy.GetMaxWindow()),
		memory.NewScheduler(store, memory.NewSummarizer(provider), policy, 700, 180),
		command.NewRouter(store),
		relay.NewRetryController(provider, policy),
		false,
	)

	srv := NewServer(NewHandler(rly), ":0")
	ts := httptest.NewServer(srv.srv.Handler)
	t.Cleanup(ts.Close)
	return ts, store
}

func postCompletions(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/chat/completions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestCompletions_JSONRoundTrip(t *testing.T) {
	provider := &fakeProvider{}
	ts, _ := newTestServer(t, provider)

	resp := postCompletions(t, ts, `{"model":"gpt-4o","messages":[{"role":"user","content":"hello there"}]}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var out core.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Object != "chat.completion" || len(out.Choices) != 1 {
		t.Errorf("malformed envelope: %+v", out)
	}
	if out.Choices[0].Message.Content != fakeReply {
		t.Error("reply content lost in transit")
	}
}

func TestCompletions_CommandInterceptedLocally(t *testing.T) {
	provider := &fakeProvider{}
	ts, store := newTestServer(t, provider)

	ctx := context.Background()
	rec, _ := store.Get(ctx, "my-conv")
	rec.RollingSummary = "old adventures"
	if err := store.Update(ctx, "my-conv", rec); err != nil {
		t.Fatal(err)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/chat/completions",
		strings.NewReader(`{"messages":[{"role":"user","content":"/forget"}]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Conversation-Id", "my-conv")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if provider.calls != 0 {
		t.Errorf("command leaked upstream: %d calls", provider.calls)
	}

	got, _ := store.Get(ctx, "my-conv")
	if got.RollingSummary != "" {
		t.Error("memory not wiped")
	}
}

func TestCompletions_StreamEndsWithDone(t *testing.T) {
	provider := &fakeProvider{
		sse: "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"hi\"},\"finish_reason\":null}]}\n\n" +
			"data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n" +
			"data: [DONE]\n\n",
	}
	ts, _ := newTestServer(t, provider)

	resp := postCompletions(t, ts, `{"stream":true,"messages":[{"role":"user","content":"hello"}]}`)
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type %q", ct)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	body := string(raw)
	if !strings.Contains(body, `"content":"hi"`) {
		t.Error("content chunk missing from stream")
	}
	if !strings.HasSuffix(body, "data: [DONE]\n\n") {
		t.Errorf("stream must end with the done sentinel, got %q", body)
	}
}

func TestCompletions_BadJSON(t *testing.T) {
	ts, _ := newTestServer(t, &fakeProvider{})

	resp := postCompletions(t, ts, `{"messages": nope}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var env errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	if env.Error.Type != "invalid_request_error" {
		t.Errorf("unexpected error type %q", env.Error.Type)
	}
}

func TestCompletions_UpstreamStatusPropagated(t *testing.T) {
	provider := &fakeProvider{err: &core.UpstreamError{StatusCode: http.StatusTooManyRequests, Body: "rate limited"}}
	ts, _ := newTestServer(t, provider)

	resp := postCompletions(t, ts, `{"messages":[{"role":"user","content":"hello"}]}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var env errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	if env.Error.Type != "upstream_error" || env.Error.Message != "rate limited" {
		t.Errorf("unexpected envelope %+v", env)
	}
}

func TestModelsAndHealth(t *testing.T) {
	ts, _ := newTestServer(t, &fakeProvider{})

	resp, err := http.Get(ts.URL + "/v1/models")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var models struct {
		Object string `json:"object"`
		Data   []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		t.Fatal(err)
	}
	if models.Object != "list" || len(models.Data) == 0 {
		t.Errorf("empty model list: %+v", models)
	}

	hr, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer hr.Body.Close()
	if hr.StatusCode != http.StatusOK {
		t.Errorf("health status %d", hr.StatusCode)
	}
}
