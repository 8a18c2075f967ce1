package core

import "context"

// CmdRouter intercepts in-band commands carried in the final message of a
// request. A matched command is answered locally and never reaches the
// upstream endpoint.
type CmdRouter interface {
	Execute(ctx context.Context, conversationID, input string) (string, bool)
	ListCommands() []Command
}

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, conversationID string, args []string) (string, error)
}
