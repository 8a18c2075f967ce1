package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/rolecast/internal/core"
	"github.com/sandevgo/rolecast/internal/service/relay"
	"github.com/sandevgo/rolecast/pkg/log"
)

// stream pumps the upstream SSE body through the merger and into the
// client. The request context is the upstream context, so a client
// disconnect tears down the upstream read.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request, turn relay.Turn) {
	ctx := r.Context()

	body, err := h.relay.StreamUpstream(ctx, turn)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	defer body.Close()

	flusher := sseHeaders(w)
	merger := h.relay.NewMerger()

	buf := make([]byte, 4096)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if !writeFrames(w, flusher, merger.Feed(buf[:n])) {
				return
			}
		}
		if readErr != nil {
			if readErr != io.EOF && ctx.Err() == nil {
				log.FromCtx(ctx).Warn().Err(readErr).Msg("upstream stream ended abnormally")
			}
			break
		}
	}

	writeFrames(w, flusher, merger.Finish())
}

// writeLocalStream emits a command reply as a minimal but valid SSE
// completion, so streaming clients need no special casing.
func writeLocalStream(w http.ResponseWriter, model, reply string) {
	flusher := sseHeaders(w)

	stop := "stop"
	id := "chatcmpl-" + uuid.NewString()
	created := time.Now().Unix()

	chunks := []core.StreamChunk{
		{
			ID: id, Object: "chat.completion.chunk", Created: created, Model: model,
			Choices: []core.StreamChoice{{Delta: core.Delta{Role: core.RoleAssistant, Content: reply}}},
		},
		{
			ID: id, Object: "chat.completion.chunk", Created: created, Model: model,
			Choices: []core.StreamChoice{{FinishReason: &stop}},
		},
	}

	for _, c := range chunks {
		data, err := json.Marshal(c)
		if err != nil {
			continue
		}
		_, _ = w.Write([]byte("data: " + string(data) + "\n\n"))
	}
	_, _ = w.Write([]byte("data: [DONE]\n\n"))
	if flusher != nil {
		flusher.Flush()
	}
}

func sseHeaders(w http.ResponseWriter) http.Flusher {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	return flusher
}

func writeFrames(w http.ResponseWriter, flusher http.Flusher, frames [][]byte) bool {
	for _, frame := range frames {
		if _, err := w.Write(frame); err != nil {
			return false
		}
	}
	if len(frames) > 0 && flusher != nil {
		flusher.Flush()
	}
	return true
}
