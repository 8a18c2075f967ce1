package relay

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/sandevgo/rolecast/internal/core"
)

const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"

	thinkOpen  = "<think>"
	thinkClose = "</think>\n"
)

// Merger reassembles chunked upstream SSE bytes into well-formed downstream
// frames. Upstream chunk boundaries do not align with logical events, so
// bytes are buffered until a complete line exists; frames are never parsed
// early. Each active stream owns its own Merger.
type Merger struct {
	showReasoning bool

	buf           []byte
	reasoningOpen bool
	emptyDelta    bool // an empty-delta / finish frame was already forwarded
	doneSeen      bool

	lastID    string
	lastModel string
}

func NewMerger(showReasoning bool) *Merger {
	return &Merger{showReasoning: showReasoning}
}

// Feed consumes one chunk of upstream bytes and returns the frames ready to
// forward. The trailing partial line stays buffered for the next chunk.
func (m *Merger) Feed(chunk []byte) [][]byte {
	m.buf = append(m.buf, chunk...)

	var frames [][]byte
	for {
		idx := bytes.IndexByte(m.buf, '\n')
		if idx < 0 {
			break
		}
		line := string(bytes.TrimRight(m.buf[:idx], "\r"))
		m.buf = m.buf[idx+1:]

		if frame := m.processLine(line); frame != nil {
			frames = append(frames, frame)
		}
	}
	return frames
}

// Finish handles upstream end-of-stream: an empty-delta frame if none was
// forwarded yet, then the terminal sentinel if upstream never sent one.
func (m *Merger) Finish() [][]byte {
	var frames [][]byte

	if !m.emptyDelta {
		content := ""
		if m.reasoningOpen {
			content = thinkClose
			m.reasoningOpen = false
		}
		stop := "stop"
		final := core.StreamChunk{
			ID:      m.lastID,
			Object:  "chat.completion.chunk",
			Created: time.Now().Unix(),
			Model:   m.lastModel,
			Choices: []core.StreamChoice{{Delta: core.Delta{Content: content}, FinishReason: &stop}},
		}
		if data, err := json.Marshal(final); err == nil {
			frames = append(frames, frameBytes(string(data)))
			m.emptyDelta = true
		}
	}

	if !m.doneSeen {
		frames = append(frames, frameBytes(doneSentinel))
		m.doneSeen = true
	}
	return frames
}

func (m *Merger) processLine(line string) []byte {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		// Frame separators; downstream framing is rebuilt per event.
		return nil
	}
	if !strings.HasPrefix(trimmed, dataPrefix) {
		// Comments and event fields pass through untouched.
		return []byte(line + "\n")
	}

	data := strings.TrimSpace(strings.TrimPrefix(trimmed, dataPrefix))
	if data == doneSentinel {
		m.doneSeen = true
		return frameBytes(doneSentinel)
	}

	var chunk core.StreamChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		// Forward malformed payloads raw rather than dropping information.
		return frameBytes(data)
	}

	m.lastID = chunk.ID
	m.lastModel = chunk.Model

	for i := range chunk.Choices {
		m.mergeDelta(&chunk.Choices[i])
		if isEmptyDelta(chunk.Choices[i]) {
			m.emptyDelta = true
		}
	}

	out, err := json.Marshal(chunk)
	if err != nil {
		return frameBytes(data)
	}
	return frameBytes(string(out))
}

// mergeDelta strips the internal reasoning channel or, in display mode,
// splices it into visible content behind think markers. The open/close
// state spans frames.
func (m *Merger) mergeDelta(choice *core.StreamChoice) {
	reasoning := choice.Delta.Reasoning
	choice.Delta.Reasoning = ""

	if !m.showReasoning {
		return
	}

	var sb strings.Builder
	if reasoning != "" {
		if !m.reasoningOpen {
			sb.WriteString(thinkOpen)
			m.reasoningOpen = true
		}
		sb.WriteString(reasoning)
	}
	if choice.Delta.Content != "" {
		if m.reasoningOpen {
			sb.WriteString(thinkClose)
			m.reasoningOpen = false
		}
		sb.WriteString(choice.Delta.Content)
	}
	if sb.Len() > 0 {
		choice.Delta.Content = sb.String()
	}
}

func isEmptyDelta(choice core.StreamChoice) bool {
	return choice.Delta.Content == "" && choice.Delta.Reasoning == "" && choice.FinishReason != nil
}

func frameBytes(data string) []byte {
	return []byte(dataPrefix + " " + data + "\n\n")
}
