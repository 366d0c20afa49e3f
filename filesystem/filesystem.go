// Package filesystem provides file operations inside a SandGrid session:
// typed wrappers over the remote file tools, a chunked transfer layer for
// files larger than a single call can carry, and a polling directory
// watcher over the remote change feed.
package filesystem

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sandgrid/sandgrid-go/apierror"
	"github.com/sandgrid/sandgrid-go/internal/logger"
	"github.com/sandgrid/sandgrid-go/progress"
)

// Caller issues tool calls inside a session. Satisfied by the SDK's
// transport client; tests supply in-memory fakes.
type Caller interface {
	CallTool(ctx context.Context, sessionID, name string, args any) (string, error)
}

// WriteMode selects the semantics of a write_file call
type WriteMode string

const (
	// WriteModeOverwrite replaces the whole file
	WriteModeOverwrite WriteMode = "overwrite"
	// WriteModeAppend appends to the end of the file
	WriteModeAppend WriteMode = "append"
)

// IsValid reports whether the mode is one the remote accepts
func (m WriteMode) IsValid() bool {
	return m == WriteModeOverwrite || m == WriteModeAppend
}

// FileInfo is the metadata returned by get_file_info and list_directory
type FileInfo struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	IsDirectory bool   `json:"isDirectory"`
	Mode        string `json:"mode,omitempty"`
	ModTime     string `json:"modTime,omitempty"`
}

// Change event types reported by the remote change feed
const (
	EventCreate = "create"
	EventModify = "modify"
	EventDelete = "delete"
	EventRename = "rename"
)

// Path types of a change event target
const (
	PathTypeFile      = "file"
	PathTypeDirectory = "directory"
)

// ChangeEvent is a single filesystem mutation reported by get_file_change.
// Immutable once received; order within a batch is the order the remote
// filesystem reported the mutations.
type ChangeEvent struct {
	EventType string `json:"eventType"`
	Path      string `json:"path"`
	PathType  string `json:"pathType"`
}

// FileSystem drives the file tools of one session
type FileSystem struct {
	caller    Caller
	sessionID string
	log       logger.Logger
	reporter  progress.Reporter
}

// New creates a FileSystem bound to a session
func New(caller Caller, sessionID string) *FileSystem {
	return &FileSystem{
		caller:    caller,
		sessionID: sessionID,
		log:       logger.With("component", "filesystem", "session_id", sessionID),
	}
}

// SetProgressReporter installs an optional reporter for large transfers
func (f *FileSystem) SetProgressReporter(r progress.Reporter) {
	f.reporter = r
}

// getReporter returns the installed reporter or a null reporter
func (f *FileSystem) getReporter() progress.Reporter {
	if f.reporter != nil {
		return f.reporter
	}
	return progress.NullReporter{}
}

type readFileArgs struct {
	Path   string `json:"path"`
	Offset *int64 `json:"offset,omitempty"`
	Length *int64 `json:"length,omitempty"`
}

type readFileResult struct {
	Content string `json:"content"`
}

// ReadFile reads the whole file at path
func (f *FileSystem) ReadFile(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", apierror.Wrap(apierror.CodeInvalidInput, "filesystem.read_file", "empty path", apierror.ErrEmptyPath)
	}

	return f.readFile(ctx, readFileArgs{Path: path})
}

// ReadFileRange reads length bytes starting at offset. A length of zero
// reads from offset to end of file. An offset past end of file yields
// empty content, not an error — the remote defines this behavior and the
// chunked reader relies on it.
func (f *FileSystem) ReadFileRange(ctx context.Context, path string, offset, length int64) (string, error) {
	op := "filesystem.read_file"
	if path == "" {
		return "", apierror.Wrap(apierror.CodeInvalidInput, op, "empty path", apierror.ErrEmptyPath)
	}
	if offset < 0 || length < 0 {
		return "", apierror.New(apierror.CodeInvalidInput, op, "offset and length must be non-negative")
	}

	return f.readFile(ctx, readFileArgs{Path: path, Offset: &offset, Length: &length})
}

func (f *FileSystem) readFile(ctx context.Context, args readFileArgs) (string, error) {
	text, err := f.caller.CallTool(ctx, f.sessionID, "read_file", args)
	if err != nil {
		return "", err
	}

	var result readFileResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return "", apierror.Wrap(apierror.CodeInternal, "filesystem.read_file", "failed to decode result", err)
	}
	return result.Content, nil
}

type writeFileArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Mode    string `json:"mode"`
}

// WriteFile writes content to path with the given mode. An invalid mode is
// rejected before any remote call.
func (f *FileSystem) WriteFile(ctx context.Context, path, content string, mode WriteMode) error {
	op := "filesystem.write_file"
	if path == "" {
		return apierror.Wrap(apierror.CodeInvalidInput, op, "empty path", apierror.ErrEmptyPath)
	}
	if !mode.IsValid() {
		return apierror.Wrap(apierror.CodeInvalidInput, op,
			fmt.Sprintf("mode must be %q or %q, got %q", WriteModeOverwrite, WriteModeAppend, mode),
			apierror.ErrInvalidWriteMode)
	}

	_, err := f.caller.CallTool(ctx, f.sessionID, "write_file", writeFileArgs{
		Path:    path,
		Content: content,
		Mode:    string(mode),
	})
	return err
}

type pathArgs struct {
	Path string `json:"path"`
}

// GetFileInfo returns metadata for a single path
func (f *FileSystem) GetFileInfo(ctx context.Context, path string) (*FileInfo, error) {
	op := "filesystem.get_file_info"
	if path == "" {
		return nil, apierror.Wrap(apierror.CodeInvalidInput, op, "empty path", apierror.ErrEmptyPath)
	}

	text, err := f.caller.CallTool(ctx, f.sessionID, "get_file_info", pathArgs{Path: path})
	if err != nil {
		return nil, err
	}

	var info FileInfo
	if err := json.Unmarshal([]byte(text), &info); err != nil {
		return nil, apierror.Wrap(apierror.CodeInternal, op, "failed to decode file info", err)
	}
	return &info, nil
}

type listDirectoryResult struct {
	Entries []FileInfo `json:"entries"`
}

// ListDirectory returns the entries directly under path
func (f *FileSystem) ListDirectory(ctx context.Context, path string) ([]FileInfo, error) {
	op := "filesystem.list_directory"
	if path == "" {
		return nil, apierror.Wrap(apierror.CodeInvalidInput, op, "empty path", apierror.ErrEmptyPath)
	}

	text, err := f.caller.CallTool(ctx, f.sessionID, "list_directory", pathArgs{Path: path})
	if err != nil {
		return nil, err
	}

	var result listDirectoryResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, apierror.Wrap(apierror.CodeInternal, op, "failed to decode directory listing", err)
	}
	return result.Entries, nil
}

// CreateDirectory creates a directory, including missing parents
func (f *FileSystem) CreateDirectory(ctx context.Context, path string) error {
	if path == "" {
		return apierror.Wrap(apierror.CodeInvalidInput, "filesystem.create_directory", "empty path", apierror.ErrEmptyPath)
	}

	_, err := f.caller.CallTool(ctx, f.sessionID, "create_directory", pathArgs{Path: path})
	return err
}

type moveFileArgs struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// MoveFile renames or moves a file or directory
func (f *FileSystem) MoveFile(ctx context.Context, source, destination string) error {
	op := "filesystem.move_file"
	if source == "" || destination == "" {
		return apierror.Wrap(apierror.CodeInvalidInput, op, "empty path", apierror.ErrEmptyPath)
	}

	_, err := f.caller.CallTool(ctx, f.sessionID, "move_file", moveFileArgs{
		Source:      source,
		Destination: destination,
	})
	return err
}

// DeleteFile removes a file or directory
func (f *FileSystem) DeleteFile(ctx context.Context, path string) error {
	if path == "" {
		return apierror.Wrap(apierror.CodeInvalidInput, "filesystem.delete_file", "empty path", apierror.ErrEmptyPath)
	}

	_, err := f.caller.CallTool(ctx, f.sessionID, "delete_file", pathArgs{Path: path})
	return err
}

type searchFilesArgs struct {
	Path    string `json:"path"`
	Pattern string `json:"pattern"`
}

type searchFilesResult struct {
	Matches []string `json:"matches"`
}

// SearchFiles returns paths under path whose names match pattern
func (f *FileSystem) SearchFiles(ctx context.Context, path, pattern string) ([]string, error) {
	op := "filesystem.search_files"
	if path == "" {
		return nil, apierror.Wrap(apierror.CodeInvalidInput, op, "empty path", apierror.ErrEmptyPath)
	}
	if pattern == "" {
		return nil, apierror.New(apierror.CodeInvalidInput, op, "pattern cannot be empty")
	}

	text, err := f.caller.CallTool(ctx, f.sessionID, "search_files", searchFilesArgs{Path: path, Pattern: pattern})
	if err != nil {
		return nil, err
	}

	var result searchFilesResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, apierror.Wrap(apierror.CodeInternal, op, "failed to decode search result", err)
	}
	return result.Matches, nil
}

type fileChangeResult struct {
	Events []ChangeEvent `json:"events"`
}

// GetFileChange returns the changes under path since the previous call.
// The remote tracks the per-path cursor; the client passes no token.
func (f *FileSystem) GetFileChange(ctx context.Context, path string) ([]ChangeEvent, error) {
	op := "filesystem.get_file_change"
	if path == "" {
		return nil, apierror.Wrap(apierror.CodeInvalidInput, op, "empty path", apierror.ErrEmptyPath)
	}

	text, err := f.caller.CallTool(ctx, f.sessionID, "get_file_change", pathArgs{Path: path})
	if err != nil {
		return nil, err
	}

	var result fileChangeResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, apierror.Wrap(apierror.CodeInternal, op, "failed to decode change events", err)
	}
	return result.Events, nil
}
