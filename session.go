package sandgrid

import (
	"context"

	"github.com/sandgrid/sandgrid-go/application"
	"github.com/sandgrid/sandgrid-go/command"
	"github.com/sandgrid/sandgrid-go/filesystem"
	"github.com/sandgrid/sandgrid-go/oss"
	"github.com/sandgrid/sandgrid-go/window"
)

// Session is a handle to one running sandbox. The capability sub-clients
// share the owning Client's transport and are safe for concurrent use.
type Session struct {
	client *Client
	info   SessionInfo

	fs  *filesystem.FileSystem
	cmd *command.Command
	oss *oss.Oss
	win *window.Manager
	app *application.Manager
}

func newSession(c *Client, info SessionInfo) *Session {
	return &Session{
		client: c,
		info:   info,
		fs:     filesystem.New(c.tc, info.SessionID),
		cmd:    command.New(c.tc, info.SessionID),
		oss:    oss.New(c.tc, info.SessionID),
		win:    window.New(c.tc, info.SessionID),
		app:    application.New(c.tc, info.SessionID),
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.info.SessionID
}

// Info returns the lifecycle metadata captured when the handle was created
func (s *Session) Info() SessionInfo {
	return s.info
}

// FileSystem returns the file operations of this session
func (s *Session) FileSystem() *filesystem.FileSystem {
	return s.fs
}

// Command returns the shell execution interface of this session
func (s *Session) Command() *command.Command {
	return s.cmd
}

// Oss returns the object-storage interface of this session
func (s *Session) Oss() *oss.Oss {
	return s.oss
}

// Window returns the window management interface of this session
func (s *Session) Window() *window.Manager {
	return s.win
}

// Application returns the application management interface of this session
func (s *Session) Application() *application.Manager {
	return s.app
}

type labelsResult struct {
	Labels map[string]string `json:"labels"`
}

// GetLabels fetches the session's current labels from the service
func (s *Session) GetLabels(ctx context.Context) (map[string]string, error) {
	var result labelsResult
	err := s.client.tc.Call(ctx, "session/labels/get", sessionIDParams{SessionID: s.info.SessionID}, &result)
	if err != nil {
		return nil, err
	}
	return result.Labels, nil
}

type setLabelsParams struct {
	SessionID string            `json:"sessionId"`
	Labels    map[string]string `json:"labels"`
}

// SetLabels replaces the session's labels
func (s *Session) SetLabels(ctx context.Context, labels map[string]string) error {
	return s.client.tc.Call(ctx, "session/labels/set", setLabelsParams{
		SessionID: s.info.SessionID,
		Labels:    labels,
	}, nil)
}

// Delete terminates the session
func (s *Session) Delete(ctx context.Context) error {
	return s.client.DeleteSession(ctx, s.info.SessionID)
}
