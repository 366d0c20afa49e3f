// Package toolcall implements the SandGrid tool-call protocol client.
// Every in-session operation is a named tool plus a JSON argument object,
// answered with a text payload wrapped in a tool-result envelope. Session
// lifecycle operations use the same transport as plain RPC calls.
package toolcall

import (
	"context"
	"encoding/json"
)

// Caller is the interface session modules use to issue tool calls.
// Implemented by Client; test fakes implement it in-memory.
type Caller interface {
	// CallTool invokes a named tool inside the given session and returns
	// the text payload of the result. A tool-level error result is
	// returned as an error carrying the remote message.
	CallTool(ctx context.Context, sessionID, name string, args any) (string, error)
}

// toolRequest is the wire format of a tool-call invocation
type toolRequest struct {
	RequestID string          `json:"requestId"`
	SessionID string          `json:"sessionId"`
	Name      string          `json:"name"`
	Args      json.RawMessage `json:"args"`
}

// contentItem is one element of a tool-result content list
type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// toolResponse is the tool-result envelope returned by the service
type toolResponse struct {
	RequestID string        `json:"requestId"`
	Content   []contentItem `json:"content"`
	IsError   bool          `json:"isError"`
}

// rpcRequest is the wire format of a session-lifecycle RPC
type rpcRequest struct {
	RequestID string          `json:"requestId"`
	Params    json.RawMessage `json:"params"`
}

// rpcResponse is the envelope of a session-lifecycle RPC result
type rpcResponse struct {
	RequestID string          `json:"requestId"`
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}
