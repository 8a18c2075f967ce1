package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/rolecast/internal/core"
)

const summaryTemperature = 0.3

// rollingPrompt demands an in-universe recap: no meta, no mention of AI or
// systems, focus on what matters for continuing the story.
const rollingPrompt = `You are the story's chronicler. Condense the scenes below into an ` +
	`in-universe recap. Preserve relationships, emotions, goals and open conflicts. ` +
	`Write in past tense, as events that happened. Never mention AI, assistants, ` +
	`systems, chats, messages or summaries. Output only the recap.`

// scenePrompt produces the short snapshot used to resume after a gap.
const scenePrompt = `Describe the current scene in a few sentences: where the characters are, ` +
	`what they are doing right now, and the mood between them. Present tense, in-universe only. ` +
	`Never mention AI, systems, chats or messages. Output only the description.`

// Summarizer condenses conversation history through the upstream model.
// Any failure is returned to the caller, which treats it as "no update".
type Summarizer struct {
	provider core.Provider
}

func NewSummarizer(provider core.Provider) *Summarizer {
	return &Summarizer{provider: provider}
}

// Condense produces the rolling summary over older history.
func (s *Summarizer) Condense(ctx context.Context, msgs []core.Message, budget int) (string, error) {
	return s.run(ctx, rollingPrompt, msgs, budget)
}

// Snapshot produces the short scene-resume description.
func (s *Summarizer) Snapshot(ctx context.Context, msgs []core.Message, budget int) (string, error) {
	return s.run(ctx, scenePrompt, msgs, budget)
}

func (s *Summarizer) run(ctx context.Context, instruction string, msgs []core.Message, budget int) (string, error) {
	if len(msgs) == 0 {
		return "", fmt.Errorf("nothing to summarize")
	}

	req := core.ChatRequest{
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: instruction},
			{Role: core.RoleUser, Content: flatten(msgs)},
		},
		Temperature: summaryTemperature,
		MaxTokens:   budget,
	}

	resp, err := s.provider.Chat(ctx, req)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", fmt.Errorf("empty summary")
	}
	return text, nil
}

// flatten joins the transcript into one role-prefixed block, in order.
func flatten(msgs []core.Message) string {
	var sb strings.Builder
	for i, m := range msgs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
	}
	return sb.String()
}
