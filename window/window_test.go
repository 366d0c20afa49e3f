package window

import (
	"context"
	"testing"

	"github.com/sandgrid/sandgrid-go/apierror"
)

type fakeCaller struct {
	lastName string
	lastArgs any
	result   string
	err      error
	calls    int
}

func (f *fakeCaller) CallTool(ctx context.Context, sessionID, name string, args any) (string, error) {
	f.calls++
	f.lastName = name
	f.lastArgs = args
	return f.result, f.err
}

func TestListRootWindows(t *testing.T) {
	fake := &fakeCaller{result: `[
		{"window_id": 10, "title": "Terminal", "pid": 321, "pname": "xterm"},
		{"window_id": 11, "title": "Editor", "child_windows": [{"window_id": 12, "title": "Find"}]}
	]`}
	m := New(fake, "session-1")

	windows, err := m.ListRootWindows(context.Background())
	if err != nil {
		t.Fatalf("ListRootWindows failed: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if windows[0].Title != "Terminal" || windows[0].PID != 321 {
		t.Errorf("unexpected window: %+v", windows[0])
	}
	if len(windows[1].ChildWindows) != 1 || windows[1].ChildWindows[0].WindowID != 12 {
		t.Errorf("child windows not decoded: %+v", windows[1])
	}
}

func TestGetActiveWindow(t *testing.T) {
	fake := &fakeCaller{result: `{"window_id": 7, "title": "Browser", "width": 1280, "height": 800}`}
	m := New(fake, "session-1")

	w, err := m.GetActiveWindow(context.Background())
	if err != nil {
		t.Fatalf("GetActiveWindow failed: %v", err)
	}
	if w.WindowID != 7 || w.Width != 1280 {
		t.Errorf("unexpected window: %+v", w)
	}
}

func TestWindowOps(t *testing.T) {
	fake := &fakeCaller{}
	m := New(fake, "session-1")
	ctx := context.Background()

	ops := []struct {
		name string
		call func() error
	}{
		{"activate_window", func() error { return m.ActivateWindow(ctx, 7) }},
		{"maximize_window", func() error { return m.MaximizeWindow(ctx, 7) }},
		{"minimize_window", func() error { return m.MinimizeWindow(ctx, 7) }},
		{"restore_window", func() error { return m.RestoreWindow(ctx, 7) }},
		{"close_window", func() error { return m.CloseWindow(ctx, 7) }},
	}

	for _, op := range ops {
		if err := op.call(); err != nil {
			t.Fatalf("%s failed: %v", op.name, err)
		}
		if fake.lastName != op.name {
			t.Errorf("expected tool %s, got %s", op.name, fake.lastName)
		}
		if args := fake.lastArgs.(windowArgs); args.WindowID != 7 {
			t.Errorf("%s: unexpected args: %+v", op.name, args)
		}
	}
}

func TestResizeWindow(t *testing.T) {
	fake := &fakeCaller{}
	m := New(fake, "session-1")

	if err := m.ResizeWindow(context.Background(), 7, 1024, 768); err != nil {
		t.Fatalf("ResizeWindow failed: %v", err)
	}
	args := fake.lastArgs.(resizeArgs)
	if args.Width != 1024 || args.Height != 768 {
		t.Errorf("unexpected args: %+v", args)
	}

	if err := m.ResizeWindow(context.Background(), 7, 0, 768); apierror.CodeOf(err) != apierror.CodeInvalidInput {
		t.Errorf("zero width should be rejected, got %v", err)
	}
}

func TestFocusMode(t *testing.T) {
	fake := &fakeCaller{}
	m := New(fake, "session-1")

	if err := m.FocusMode(context.Background(), true); err != nil {
		t.Fatalf("FocusMode failed: %v", err)
	}
	if fake.lastName != "focus_mode" {
		t.Errorf("unexpected tool: %s", fake.lastName)
	}
	if args := fake.lastArgs.(focusModeArgs); !args.On {
		t.Errorf("unexpected args: %+v", args)
	}
}

func TestWindowOps_Validation(t *testing.T) {
	fake := &fakeCaller{}
	m := New(fake, "session-1")
	ctx := context.Background()

	if err := m.ActivateWindow(ctx, 0); apierror.CodeOf(err) != apierror.CodeInvalidInput {
		t.Errorf("zero window id should be rejected, got %v", err)
	}
	if err := m.CloseWindow(ctx, -1); apierror.CodeOf(err) != apierror.CodeInvalidInput {
		t.Errorf("negative window id should be rejected, got %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("validation failures must not reach the transport, got %d calls", fake.calls)
	}
}
