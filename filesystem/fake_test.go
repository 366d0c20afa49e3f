package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// toolCall records one CallTool invocation for assertions
type toolCall struct {
	name string
	args map[string]any
}

// fakeCaller simulates the remote file tools against a real in-memory
// store: appended writes concatenate and ranged reads slice by offset, so
// round-trip tests exercise the actual chunk arithmetic.
type fakeCaller struct {
	mu    sync.Mutex
	files map[string]string
	calls []toolCall

	// failAt makes the nth call (1-based, counted per tool) of a tool fail
	failAt map[string]int
	counts map[string]int

	// pollScript holds scripted get_file_change responses, consumed in
	// order; when exhausted, polls return empty event lists
	pollScript []pollResponse
}

type pollResponse struct {
	events []ChangeEvent
	err    error
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{
		files:  make(map[string]string),
		failAt: make(map[string]int),
		counts: make(map[string]int),
	}
}

func (c *fakeCaller) CallTool(ctx context.Context, sessionID, name string, args any) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	c.calls = append(c.calls, toolCall{name: name, args: parsed})

	c.counts[name]++
	if n, ok := c.failAt[name]; ok && c.counts[name] == n {
		return "", fmt.Errorf("injected failure for %s call %d", name, n)
	}

	switch name {
	case "get_file_info":
		path := parsed["path"].(string)
		content, ok := c.files[path]
		if !ok {
			return "", fmt.Errorf("no such file: %s", path)
		}
		return fmt.Sprintf(`{"name":%q,"path":%q,"size":%d,"isDirectory":false}`, path, path, len(content)), nil

	case "read_file":
		path := parsed["path"].(string)
		content, ok := c.files[path]
		if !ok {
			return "", fmt.Errorf("no such file: %s", path)
		}

		offsetVal, hasOffset := parsed["offset"]
		if !hasOffset {
			return encodeContent(content), nil
		}

		offset := int64(offsetVal.(float64))
		length := int64(0)
		if l, ok := parsed["length"]; ok {
			length = int64(l.(float64))
		}

		// Remote semantics: offset past EOF yields empty content,
		// length 0 reads to EOF
		if offset >= int64(len(content)) {
			return encodeContent(""), nil
		}
		end := int64(len(content))
		if length > 0 && offset+length < end {
			end = offset + length
		}
		return encodeContent(content[offset:end]), nil

	case "write_file":
		path := parsed["path"].(string)
		content := parsed["content"].(string)
		mode := parsed["mode"].(string)

		switch mode {
		case "overwrite":
			c.files[path] = content
		case "append":
			c.files[path] += content
		default:
			return "", fmt.Errorf("invalid mode: %s", mode)
		}
		return `{"success":true}`, nil

	case "get_file_change":
		if len(c.pollScript) == 0 {
			return `{"events":[]}`, nil
		}
		resp := c.pollScript[0]
		c.pollScript = c.pollScript[1:]
		if resp.err != nil {
			return "", resp.err
		}
		raw, err := json.Marshal(map[string][]ChangeEvent{"events": resp.events})
		if err != nil {
			return "", err
		}
		return string(raw), nil

	case "list_directory":
		return `{"entries":[{"name":"a.txt","path":"/ws/a.txt","size":3,"isDirectory":false},{"name":"sub","path":"/ws/sub","size":0,"isDirectory":true}]}`, nil

	case "search_files":
		return `{"matches":["/ws/a.txt","/ws/sub/b.txt"]}`, nil

	case "create_directory", "move_file", "delete_file":
		return `{"success":true}`, nil
	}

	return "", fmt.Errorf("unknown tool: %s", name)
}

func encodeContent(content string) string {
	raw, _ := json.Marshal(map[string]string{"content": content})
	return string(raw)
}

// callsFor returns the recorded calls of one tool, in order
func (c *fakeCaller) callsFor(name string) []toolCall {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []toolCall
	for _, call := range c.calls {
		if call.name == name {
			out = append(out, call)
		}
	}
	return out
}

// totalCalls returns the number of transport calls made
func (c *fakeCaller) totalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// setFile seeds the store directly
func (c *fakeCaller) setFile(path, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = content
}

// getFile reads the store directly
func (c *fakeCaller) getFile(path string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.files[path]
}
