package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sandevgo/rolecast/internal/core"
	"github.com/sandevgo/rolecast/internal/providers/llm"
	"github.com/sandevgo/rolecast/internal/service/identity"
	"github.com/sandevgo/rolecast/internal/service/relay"
	"github.com/sandevgo/rolecast/pkg/log"
)

// Handler holds the request-scoped glue between the OpenAI wire shapes
// and the relay pipeline.
type Handler struct {
	relay *relay.Relay
}

func NewHandler(r *relay.Relay) *Handler {
	return &Handler{relay: r}
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func (h *Handler) Completions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req core.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request_error")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty", "invalid_request_error")
		return
	}

	conversationID := identity.Resolve(r.Header, req)

	turn, err := h.relay.Prepare(ctx, conversationID, req)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}

	if turn.LocalReply != "" {
		if req.Stream {
			writeLocalStream(w, req.Model, turn.LocalReply)
			return
		}
		writeJSON(w, http.StatusOK, relay.LocalResponse(req.Model, turn.LocalReply))
		return
	}

	if req.Stream {
		h.stream(w, r, turn)
		return
	}

	resp, err := h.relay.Complete(ctx, turn)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	type model struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		OwnedBy string `json:"owned_by"`
	}
	type list struct {
		Object string  `json:"object"`
		Data   []model `json:"data"`
	}

	out := list{Object: "list"}
	for _, id := range llm.KnownModels() {
		out.Data = append(out.Data, model{ID: id, Object: "model", OwnedBy: "rolecast"})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": core.RolecastName,
		"version": core.RolecastVersion,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, errType string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Message: message, Type: errType}})
}

// writeUpstreamError maps provider failures onto the client response:
// upstream HTTP errors keep their status code, everything else is a 502.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	log.FromCtx(r.Context()).Error().Err(err).Msg("completion failed")

	var ue *core.UpstreamError
	if errors.As(err, &ue) {
		writeError(w, ue.StatusCode, ue.Body, "upstream_error")
		return
	}
	writeError(w, http.StatusBadGateway, err.Error(), "relay_error")
}
