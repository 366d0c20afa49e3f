// Package command runs shell commands inside a SandGrid session.
package command

import (
	"context"
	"time"

	"github.com/sandgrid/sandgrid-go/apierror"
	"github.com/sandgrid/sandgrid-go/internal/logger"
)

// Caller issues tool calls inside a session. Satisfied by the SDK's
// transport client; tests supply in-memory fakes.
type Caller interface {
	CallTool(ctx context.Context, sessionID, name string, args any) (string, error)
}

// Command drives the shell tool of one session
type Command struct {
	caller    Caller
	sessionID string
	log       logger.Logger
}

// New creates a Command bound to a session
func New(caller Caller, sessionID string) *Command {
	return &Command{
		caller:    caller,
		sessionID: sessionID,
		log:       logger.With("component", "command", "session_id", sessionID),
	}
}

type executeArgs struct {
	Command   string `json:"command"`
	TimeoutMS int64  `json:"timeout_ms,omitempty"`
}

// Execute runs cmd in the session's shell and returns its combined output.
// A zero timeout leaves the limit to the remote; the command is killed
// remotely when the limit is exceeded.
func (c *Command) Execute(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	op := "command.execute"
	if cmd == "" {
		return "", apierror.New(apierror.CodeInvalidInput, op, "command cannot be empty")
	}
	if timeout < 0 {
		return "", apierror.New(apierror.CodeInvalidInput, op, "timeout cannot be negative")
	}

	c.log.Debug("executing command", "timeout", timeout)

	return c.caller.CallTool(ctx, c.sessionID, "shell_exec", executeArgs{
		Command:   cmd,
		TimeoutMS: timeout.Milliseconds(),
	})
}
