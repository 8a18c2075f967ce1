package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/rolecast/internal/core"
)

// OpenAICompatible talks to any endpoint exposing the OpenAI chat
// completions wire format.
type OpenAICompatible struct {
	baseProvider
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewOpenAICompatible(cfg Config) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout),
	}
}

func (o *OpenAICompatible) headers() map[string]string {
	h := make(map[string]string)
	if o.apiKey != "" {
		h["Authorization"] = "Bearer " + o.apiKey
	}
	return h
}

func (o *OpenAICompatible) prepare(req core.ChatRequest) core.ChatRequest {
	req.Model = ResolveModel(req.Model, o.model)
	// Identity fields are consumed by the relay, never forwarded.
	req.ConversationID = ""
	req.User = ""
	return req
}

func (o *OpenAICompatible) Chat(ctx context.Context, req core.ChatRequest) (core.Message, error) {
	req = o.prepare(req)
	req.Stream = false

	resp, err := o.doRequest(ctx, http.MethodPost, "/chat/completions", req, o.headers())
	if err != nil {
		return core.Message{}, err
	}
	defer resp.Body.Close()

	return parseResponse(resp)
}

// ChatStream issues a streaming completion and hands the raw SSE body to
// the caller. The caller must close it.
func (o *OpenAICompatible) ChatStream(ctx context.Context, req core.ChatRequest) (io.ReadCloser, error) {
	req = o.prepare(req)
	req.Stream = true

	resp, err := o.doStreamRequest(ctx, "/chat/completions", req, o.headers())
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &core.UpstreamError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return resp.Body, nil
}

func parseResponse(resp *http.Response) (core.Message, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Message{}, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return core.Message{}, &core.UpstreamError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var result core.ChatResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return core.Message{}, fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return core.Message{}, fmt.Errorf("empty choices: %s", string(data))
	}
	return result.Choices[0].Message, nil
}
