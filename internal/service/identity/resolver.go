// Package identity derives a stable conversation key from a request so
// memory written on one turn is found again on the next, even for clients
// that never send an explicit identifier.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sandevgo/rolecast/internal/core"
)

const HeaderConversationID = "X-Conversation-Id"

// chatRefPattern matches a conversation id embedded in a referring URL,
// e.g. https://host/chat/abc-123 or /#/chat/abc-123.
var chatRefPattern = regexp.MustCompile(`/chat/([A-Za-z0-9_-]+)`)

// Resolve returns the conversation key for a request. Resolution order:
// explicit header, explicit body field, the OpenAI "user" field, an id
// embedded in the Referer URL, a content hash of the first message, and
// finally a fresh ephemeral id. Everything before the last step is a pure
// function of the request.
func Resolve(header http.Header, req core.ChatRequest) string {
	if id := strings.TrimSpace(header.Get(HeaderConversationID)); id != "" {
		return id
	}
	if id := strings.TrimSpace(req.ConversationID); id != "" {
		return id
	}
	if id := strings.TrimSpace(req.User); id != "" {
		return id
	}
	if ref := header.Get("Referer"); ref != "" {
		if m := chatRefPattern.FindStringSubmatch(ref); m != nil {
			return m[1]
		}
	}
	if len(req.Messages) > 0 && strings.TrimSpace(req.Messages[0].Content) != "" {
		return hashContent(req.Messages[0].Content)
	}
	return uuid.NewString()
}

// hashContent gives two identifier-less requests carrying the same opening
// message the same key instead of silently forking a new conversation.
func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return "conv-" + hex.EncodeToString(sum[:8])
}
