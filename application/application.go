// Package application manages desktop applications inside a SandGrid
// session: discovery of installed apps, starting them and stopping the
// processes they spawn.
package application

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

// App describes an installed application
type App struct {
	Name          string `json:"name"`
	StartCmd      string `json:"start_cmd"`
	StopCmd       string `json:"stop_cmd,omitempty"`
	WorkDirectory string `json:"work_directory,omitempty"`
}

// Process describes a running process started from an application
type Process struct {
	PName   string `json:"pname"`
	PID     int    `json:"pid"`
	CmdLine string `json:"cmdline,omitempty"`
}

// Manager drives the application tools of one session
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
		log:       logger.With("component", "application", "session_id", sessionID),
	}
}

type installedAppsArgs struct {
	StartMenu        bool `json:"start_menu"`
	Desktop          bool `json:"desktop"`
	IgnoreSystemApps bool `json:"ignore_system_apps"`
}

// GetInstalledApps returns the applications installed in the session,
// scanned from the start menu and/or desktop
func (m *Manager) GetInstalledApps(ctx context.Context, startMenu, desktop, ignoreSystemApps bool) ([]App, error) {
	op := "application.get_installed_apps"

	text, err := m.caller.CallTool(ctx, m.sessionID, "get_installed_apps", installedAppsArgs{
		StartMenu:        startMenu,
		Desktop:          desktop,
		IgnoreSystemApps: ignoreSystemApps,
	})
	if err != nil {
		return nil, err
	}

	var apps []App
	if err := json.Unmarshal([]byte(text), &apps); err != nil {
		return nil, apierror.Wrap(apierror.CodeInternal, op, "failed to decode app list", err)
	}
	return apps, nil
}

type startAppArgs struct {
	StartCmd      string `json:"start_cmd"`
	WorkDirectory string `json:"work_directory,omitempty"`
}

// StartApp launches an application by its start command and returns the
// processes it spawned
func (m *Manager) StartApp(ctx context.Context, startCmd, workDirectory string) ([]Process, error) {
	op := "application.start_app"
	if startCmd == "" {
		return nil, apierror.New(apierror.CodeInvalidInput, op, "start command cannot be empty")
	}

	m.log.Debug("starting application", "work_directory", workDirectory)

	text, err := m.caller.CallTool(ctx, m.sessionID, "start_app", startAppArgs{
		StartCmd:      startCmd,
		WorkDirectory: workDirectory,
	})
	if err != nil {
		return nil, err
	}

	var procs []Process
	if err := json.Unmarshal([]byte(text), &procs); err != nil {
		return nil, apierror.Wrap(apierror.CodeInternal, op, "failed to decode process list", err)
	}
	return procs, nil
}

// StopAppByPName stops all processes with the given process name
func (m *Manager) StopAppByPName(ctx context.Context, pname string) error {
	if pname == "" {
		return apierror.New(apierror.CodeInvalidInput, "application.stop_app_by_pname", "process name cannot be empty")
	}

	_, err := m.caller.CallTool(ctx, m.sessionID, "stop_app_by_pname", map[string]string{"pname": pname})
	return err
}

// StopAppByPID stops the process with the given pid
func (m *Manager) StopAppByPID(ctx context.Context, pid int) error {
	if pid <= 0 {
		return apierror.New(apierror.CodeInvalidInput, "application.stop_app_by_pid", "pid must be positive")
	}

	_, err := m.caller.CallTool(ctx, m.sessionID, "stop_app_by_pid", map[string]int{"pid": pid})
	return err
}

// StopAppByCmd runs the application's stop command inside the session
func (m *Manager) StopAppByCmd(ctx context.Context, stopCmd string) error {
	if stopCmd == "" {
		return apierror.New(apierror.CodeInvalidInput, "application.stop_app_by_cmd", "stop command cannot be empty")
	}

	_, err := m.caller.CallTool(ctx, m.sessionID, "stop_app_by_cmd", map[string]string{"stop_cmd": stopCmd})
	return err
}

// ListVisibleApps returns the processes owning visible windows
func (m *Manager) ListVisibleApps(ctx context.Context) ([]Process, error) {
	op := "application.list_visible_apps"

	text, err := m.caller.CallTool(ctx, m.sessionID, "list_visible_apps", nil)
	if err != nil {
		return nil, err
	}

	var procs []Process
	if err := json.Unmarshal([]byte(text), &procs); err != nil {
		return nil, apierror.Wrap(apierror.CodeInternal, op, "failed to decode process list", err)
	}
	return procs, nil
}
