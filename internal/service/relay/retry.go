package relay

import (
	"context"
	"regexp"
	"strings"

	"github.com/sandevgo/rolecast/internal/core"
	"github.com/sandevgo/rolecast/pkg/log"
)

const maxTemperature = 1.0

// actionMarker matches an asterisk-delimited roleplay action like
// *leans closer*. A response without one has usually dropped out of
// character.
var actionMarker = regexp.MustCompile(`\*[^*\n]+\*`)

// RetryController re-invokes the completion call when the answer fails the
// quality gate, escalating temperature each attempt. The bound is absolute:
// the final attempt's answer is returned regardless. Transport and HTTP
// failures are never retried here; they propagate immediately.
type RetryController struct {
	provider core.Provider
	policy   core.RetryPolicy
}

func NewRetryController(provider core.Provider, policy core.RetryPolicy) *RetryController {
	return &RetryController{provider: provider, policy: policy}
}

// Chat is an explicit bounded loop carrying (request, attempt); the retry
// bound stays visible instead of hiding in recursion depth.
func (r *RetryController) Chat(ctx context.Context, req core.ChatRequest) (core.Message, error) {
	logger := log.FromCtx(ctx)
	maxRetries := r.policy.GetMaxRetries()

	for attempt := 0; ; attempt++ {
		msg, err := r.provider.Chat(ctx, req)
		if err != nil {
			return core.Message{}, err
		}

		if r.acceptable(msg.Content) || attempt >= maxRetries {
			if attempt > 0 {
				logger.Debug().
					Int("attempts", attempt+1).
					Bool("accepted", r.acceptable(msg.Content)).
					Msg("quality retries finished")
			}
			return msg, nil
		}

		req.Temperature = escalate(req.Temperature, r.policy.GetTemperatureStep())
		logger.Debug().
			Int("attempt", attempt+1).
			Float64("temperature", req.Temperature).
			Int("words", wordCount(msg.Content)).
			Msg("response below quality gate, retrying")
	}
}

func (r *RetryController) acceptable(content string) bool {
	if wordCount(content) < r.policy.GetMinResponseWords() {
		return false
	}
	return actionMarker.MatchString(content)
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func escalate(temp, step float64) float64 {
	temp += step
	if temp > maxTemperature {
		return maxTemperature
	}
	return temp
}
