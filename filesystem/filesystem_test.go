package filesystem

import (
	"context"
	"errors"
	"testing"

	"github.com/sandgrid/sandgrid-go/apierror"
)

func TestWriteFile_InvalidModeRejectedPreflight(t *testing.T) {
	caller := newFakeCaller()
	fs := newTestFS(caller)

	err := fs.WriteFile(context.Background(), "/ws/x", "data", WriteMode("bogus"))
	if !errors.Is(err, apierror.ErrInvalidWriteMode) {
		t.Fatalf("expected ErrInvalidWriteMode, got %v", err)
	}
	if caller.totalCalls() != 0 {
		t.Errorf("invalid mode must be rejected before any network call, got %d calls", caller.totalCalls())
	}
}

func TestWriteFile_Modes(t *testing.T) {
	caller := newFakeCaller()
	fs := newTestFS(caller)
	ctx := context.Background()

	if err := fs.WriteFile(ctx, "/ws/log.txt", "one", WriteModeOverwrite); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if err := fs.WriteFile(ctx, "/ws/log.txt", "-two", WriteModeAppend); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if got := caller.getFile("/ws/log.txt"); got != "one-two" {
		t.Errorf("expected appended content, got %q", got)
	}
}

func TestReadFileRange_OffsetSemantics(t *testing.T) {
	caller := newFakeCaller()
	fs := newTestFS(caller)
	ctx := context.Background()
	caller.setFile("/ws/data.txt", "0123456789")

	// Offset past end of file: empty content, not an error
	got, err := fs.ReadFileRange(ctx, "/ws/data.txt", 1000, 10)
	if err != nil {
		t.Fatalf("offset past EOF should not error: %v", err)
	}
	if got != "" {
		t.Errorf("offset past EOF should yield empty content, got %q", got)
	}

	// Length zero: read from offset to end of file
	got, err = fs.ReadFileRange(ctx, "/ws/data.txt", 5, 0)
	if err != nil {
		t.Fatalf("read to EOF failed: %v", err)
	}
	if got != "56789" {
		t.Errorf("expected bytes 5..EOF, got %q", got)
	}

	// Bounded range
	got, err = fs.ReadFileRange(ctx, "/ws/data.txt", 2, 3)
	if err != nil {
		t.Fatalf("bounded read failed: %v", err)
	}
	if got != "234" {
		t.Errorf("expected %q, got %q", "234", got)
	}

	// Negative offset rejected without a call
	before := caller.totalCalls()
	if _, err := fs.ReadFileRange(ctx, "/ws/data.txt", -1, 3); err == nil {
		t.Error("negative offset should be rejected")
	}
	if caller.totalCalls() != before {
		t.Error("validation failure must not reach the transport")
	}
}

func TestGetFileInfo(t *testing.T) {
	caller := newFakeCaller()
	fs := newTestFS(caller)
	caller.setFile("/ws/report.csv", makeContent(1234))

	info, err := fs.GetFileInfo(context.Background(), "/ws/report.csv")
	if err != nil {
		t.Fatalf("GetFileInfo failed: %v", err)
	}
	if info.Size != 1234 {
		t.Errorf("expected size 1234, got %d", info.Size)
	}
	if info.IsDirectory {
		t.Error("expected a regular file")
	}
}

func TestGetFileInfo_Missing(t *testing.T) {
	caller := newFakeCaller()
	fs := newTestFS(caller)

	if _, err := fs.GetFileInfo(context.Background(), "/ws/nope"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestListDirectory(t *testing.T) {
	caller := newFakeCaller()
	fs := newTestFS(caller)

	entries, err := fs.ListDirectory(context.Background(), "/ws")
	if err != nil {
		t.Fatalf("ListDirectory failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "a.txt" || entries[0].IsDirectory {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Name != "sub" || !entries[1].IsDirectory {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestSearchFiles(t *testing.T) {
	caller := newFakeCaller()
	fs := newTestFS(caller)

	matches, err := fs.SearchFiles(context.Background(), "/ws", "*.txt")
	if err != nil {
		t.Fatalf("SearchFiles failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	if _, err := fs.SearchFiles(context.Background(), "/ws", ""); err == nil {
		t.Error("empty pattern should be rejected")
	}
}

func TestMoveFile_SendsBothPaths(t *testing.T) {
	caller := newFakeCaller()
	fs := newTestFS(caller)

	if err := fs.MoveFile(context.Background(), "/ws/a", "/ws/b"); err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}

	moves := caller.callsFor("move_file")
	if len(moves) != 1 {
		t.Fatalf("expected 1 move_file call, got %d", len(moves))
	}
	if moves[0].args["source"] != "/ws/a" || moves[0].args["destination"] != "/ws/b" {
		t.Errorf("unexpected move args: %v", moves[0].args)
	}
}

func TestEmptyPath_AllPrimitives(t *testing.T) {
	caller := newFakeCaller()
	fs := newTestFS(caller)
	ctx := context.Background()

	checks := []error{}
	_, err := fs.ReadFile(ctx, "")
	checks = append(checks, err)
	err = fs.WriteFile(ctx, "", "x", WriteModeOverwrite)
	checks = append(checks, err)
	_, err = fs.GetFileInfo(ctx, "")
	checks = append(checks, err)
	_, err = fs.ListDirectory(ctx, "")
	checks = append(checks, err)
	err = fs.CreateDirectory(ctx, "")
	checks = append(checks, err)
	err = fs.DeleteFile(ctx, "")
	checks = append(checks, err)
	_, err = fs.GetFileChange(ctx, "")
	checks = append(checks, err)

	for i, err := range checks {
		if !errors.Is(err, apierror.ErrEmptyPath) {
			t.Errorf("check %d: expected ErrEmptyPath, got %v", i, err)
		}
	}
	if caller.totalCalls() != 0 {
		t.Errorf("empty paths must never reach the transport, got %d calls", caller.totalCalls())
	}
}
