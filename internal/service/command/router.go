// Package command intercepts the small closed set of in-band commands a
// client can put in its final message. Matched commands are answered
// locally; their text never reaches the upstream endpoint.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/rolecast/internal/core"
)

type Router struct {
	commands map[string]core.Command
}

func New(commands []core.Command) *Router {
	c := &Router{
		commands: make(map[string]core.Command),
	}

	for _, cmd := range commands {
		c.commands[cmd.Name()] = cmd
	}
	return c
}

// Execute dispatches input when it is a recognized command. The second
// return reports whether the input was intercepted at all.
func (c *Router) Execute(ctx context.Context, conversationID, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", false
	}

	parts := strings.Fields(input)
	name := strings.TrimPrefix(parts[0], "/")
	args := parts[1:]

	cmd, ok := c.commands[name]
	if !ok {
		// Not one of ours: roleplay text may legitimately start with "/".
		return "", false
	}

	result, err := cmd.Execute(ctx, conversationID, args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	return result, true
}

func (c *Router) ListCommands() []core.Command {
	res := make([]core.Command, 0, len(c.commands))
	for _, cmd := range c.commands {
		res = append(res, cmd)
	}
	return res
}
