package core

import (
	"context"
	"fmt"
	"io"
)

// Provider is the upstream completion endpoint. Chat returns the first
// choice's message. ChatStream returns the raw SSE body; the caller owns
// closing it.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (Message, error)
	ChatStream(ctx context.Context, req ChatRequest) (io.ReadCloser, error)
}

// UpstreamError carries the upstream HTTP status so transport failures can
// be surfaced to the downstream caller with the original code.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream http %d: %s", e.StatusCode, e.Body)
}
