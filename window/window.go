// Package window manages the desktop windows of a SandGrid session.
package window

import (
	"context"
	"encoding/json"

	"github.com/sandgrid/sandgrid-go/apierror"
	"github.com/sandgrid/sandgrid-go/internal/logger"
)

// Caller issues tool calls inside a session. Satisfied by the SDK's
// transport client; tests supply in-memory fakes.
type Caller interface {
	CallTool(ctx context.Context, sessionID, name string, args any) (string, error)
}

// Window describes a desktop window in the session
type Window struct {
	WindowID           int      `json:"window_id"`
	Title              string   `json:"title"`
	AbsoluteUpperLeftX int      `json:"absolute_upper_left_x,omitempty"`
	AbsoluteUpperLeftY int      `json:"absolute_upper_left_y,omitempty"`
	Width              int      `json:"width,omitempty"`
	Height             int      `json:"height,omitempty"`
	PID                int      `json:"pid,omitempty"`
	PName              string   `json:"pname,omitempty"`
	ChildWindows       []Window `json:"child_windows,omitempty"`
}

// Manager drives the window tools of one session
type Manager struct {
	caller    Caller
	sessionID string
	log       logger.Logger
}

// New creates a Manager bound to a session
func New(caller Caller, sessionID string) *Manager {
	return &Manager{
		caller:    caller,
		sessionID: sessionID,
		log:       logger.With("component", "window", "session_id", sessionID),
	}
}

// ListRootWindows returns the top-level windows of the session desktop
func (m *Manager) ListRootWindows(ctx context.Context) ([]Window, error) {
	op := "window.list_root_windows"

	text, err := m.caller.CallTool(ctx, m.sessionID, "list_root_windows", nil)
	if err != nil {
		return nil, err
	}

	var windows []Window
	if err := json.Unmarshal([]byte(text), &windows); err != nil {
		return nil, apierror.Wrap(apierror.CodeInternal, op, "failed to decode window list", err)
	}
	return windows, nil
}

// GetActiveWindow returns the window that currently holds focus
func (m *Manager) GetActiveWindow(ctx context.Context) (*Window, error) {
	op := "window.get_active_window"

	text, err := m.caller.CallTool(ctx, m.sessionID, "get_active_window", nil)
	if err != nil {
		return nil, err
	}

	var w Window
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return nil, apierror.Wrap(apierror.CodeInternal, op, "failed to decode window", err)
	}
	return &w, nil
}

type windowArgs struct {
	WindowID int `json:"window_id"`
}

// ActivateWindow gives focus to the window
func (m *Manager) ActivateWindow(ctx context.Context, windowID int) error {
	return m.windowOp(ctx, "activate_window", windowID)
}

// MaximizeWindow maximizes the window
func (m *Manager) MaximizeWindow(ctx context.Context, windowID int) error {
	return m.windowOp(ctx, "maximize_window", windowID)
}

// MinimizeWindow minimizes the window
func (m *Manager) MinimizeWindow(ctx context.Context, windowID int) error {
	return m.windowOp(ctx, "minimize_window", windowID)
}

// RestoreWindow restores a minimized or maximized window
func (m *Manager) RestoreWindow(ctx context.Context, windowID int) error {
	return m.windowOp(ctx, "restore_window", windowID)
}

// CloseWindow closes the window
func (m *Manager) CloseWindow(ctx context.Context, windowID int) error {
	return m.windowOp(ctx, "close_window", windowID)
}

func (m *Manager) windowOp(ctx context.Context, tool string, windowID int) error {
	if windowID <= 0 {
		return apierror.New(apierror.CodeInvalidInput, "window."+tool, "window id must be positive")
	}

	_, err := m.caller.CallTool(ctx, m.sessionID, tool, windowArgs{WindowID: windowID})
	return err
}

type resizeArgs struct {
	WindowID int `json:"window_id"`
	Width    int `json:"width"`
	Height   int `json:"height"`
}

// ResizeWindow resizes the window to width x height pixels
func (m *Manager) ResizeWindow(ctx context.Context, windowID, width, height int) error {
	op := "window.resize_window"
	if windowID <= 0 {
		return apierror.New(apierror.CodeInvalidInput, op, "window id must be positive")
	}
	if width <= 0 || height <= 0 {
		return apierror.New(apierror.CodeInvalidInput, op, "width and height must be positive")
	}

	_, err := m.caller.CallTool(ctx, m.sessionID, "resize_window", resizeArgs{
		WindowID: windowID,
		Width:    width,
		Height:   height,
	})
	return err
}

type focusModeArgs struct {
	On bool `json:"on"`
}

// FocusMode toggles focus mode, which keeps the active window in the
// foreground and blocks window switching until turned off
func (m *Manager) FocusMode(ctx context.Context, on bool) error {
	m.log.Debug("setting focus mode", "on", on)

	_, err := m.caller.CallTool(ctx, m.sessionID, "focus_mode", focusModeArgs{On: on})
	return err
}
