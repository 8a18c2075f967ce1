package relay

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sandevgo/rolecast/internal/core"
)

func chunkLine(delta core.Delta, finish *string) string {
	chunk := core.StreamChunk{
		ID:      "chatcmpl-1",
		Object:  "chat.completion.chunk",
		Model:   "deepseek-chat",
		Choices: []core.StreamChoice{{Delta: delta, FinishReason: finish}},
	}
	data, _ := json.Marshal(chunk)
	return "data: " + string(data) + "\n\n"
}

func collect(frames [][]byte) string {
	var sb strings.Builder
	for _, f := range frames {
		sb.Write(f)
	}
	return sb.String()
}

func TestMerger_SplitChunksMatchSingleChunk(t *testing.T) {
	event := chunkLine(core.Delta{Content: "hello there"}, nil)

	single := NewMerger(false)
	whole := collect(single.Feed([]byte(event)))

	for cut := 1; cut < len(event)-1; cut++ {
		split := NewMerger(false)
		var frames [][]byte
		frames = append(frames, split.Feed([]byte(event[:cut]))...)
		frames = append(frames, split.Feed([]byte(event[cut:]))...)
		if got := collect(frames); got != whole {
			t.Fatalf("split at %d produced different output:\n%q\nvs\n%q", cut, got, whole)
		}
	}
}

func TestMerger_StripsReasoning(t *testing.T) {
	m := NewMerger(false)

	frames := m.Feed([]byte(chunkLine(core.Delta{Reasoning: "thinking hard"}, nil)))
	out := collect(frames)
	if strings.Contains(out, "thinking hard") {
		t.Errorf("reasoning leaked downstream: %q", out)
	}
	if strings.Contains(out, `"reasoning"`) {
		t.Errorf("reasoning field survived: %q", out)
	}
}

func TestMerger_SplicesReasoningWithMarkers(t *testing.T) {
	m := NewMerger(true)

	var frames [][]byte
	frames = append(frames, m.Feed([]byte(chunkLine(core.Delta{Reasoning: "first thought"}, nil)))...)
	frames = append(frames, m.Feed([]byte(chunkLine(core.Delta{Reasoning: " second thought"}, nil)))...)
	frames = append(frames, m.Feed([]byte(chunkLine(core.Delta{Content: "spoken reply"}, nil)))...)
	out := collect(frames)

	if strings.Count(out, thinkOpen) != 1 {
		t.Errorf("opening marker should appear exactly once:\n%s", out)
	}
	if !strings.Contains(out, "first thought") || !strings.Contains(out, "second thought") {
		t.Errorf("reasoning text missing:\n%s", out)
	}
	closeIdx := strings.Index(out, strings.TrimSpace(thinkClose))
	replyIdx := strings.Index(out, "spoken reply")
	if closeIdx < 0 || replyIdx < 0 || closeIdx > replyIdx {
		t.Errorf("closing marker must precede resumed content:\n%s", out)
	}
}

func TestMerger_DoneForwardedVerbatim(t *testing.T) {
	m := NewMerger(false)

	frames := m.Feed([]byte("data: [DONE]\n"))
	out := collect(frames)
	if out != "data: [DONE]\n\n" {
		t.Errorf("sentinel mangled: %q", out)
	}

	// Finish after sentinel adds nothing but the missing empty delta.
	finish := collect(m.Finish())
	if strings.Contains(finish, "[DONE]") {
		t.Errorf("sentinel duplicated: %q", finish)
	}
}

func TestMerger_MalformedLineForwardedRaw(t *testing.T) {
	m := NewMerger(false)

	frames := m.Feed([]byte("data: {not json at all\n"))
	out := collect(frames)
	if !strings.Contains(out, "{not json at all") {
		t.Errorf("malformed payload dropped instead of forwarded: %q", out)
	}
}

func TestMerger_FinishEmitsFinalFrameOnce(t *testing.T) {
	m := NewMerger(false)
	m.Feed([]byte(chunkLine(core.Delta{Content: "partial"}, nil)))

	out := collect(m.Finish())
	if !strings.Contains(out, `"finish_reason":"stop"`) {
		t.Errorf("missing final empty-delta frame: %q", out)
	}
	if !strings.Contains(out, "[DONE]") {
		t.Errorf("missing terminal sentinel: %q", out)
	}
	if strings.Contains(out, `"created":0`) {
		t.Errorf("synthesized final frame carries no timestamp: %q", out)
	}

	// A stream that already carried a finish frame gets no duplicate.
	m2 := NewMerger(false)
	stop := "stop"
	m2.Feed([]byte(chunkLine(core.Delta{}, &stop)))
	m2.Feed([]byte("data: [DONE]\n"))
	if out := collect(m2.Finish()); out != "" {
		t.Errorf("Finish() duplicated terminal frames: %q", out)
	}
}

func TestMerger_PartialLineStaysBuffered(t *testing.T) {
	m := NewMerger(false)

	if frames := m.Feed([]byte("data: {\"id\":\"x\"")); len(frames) != 0 {
		t.Fatalf("incomplete line parsed early: %v", frames)
	}
	if !bytes.Contains(m.buf, []byte(`"id":"x"`)) {
		t.Error("partial line not retained in the buffer")
	}
}
