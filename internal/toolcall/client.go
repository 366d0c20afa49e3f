package toolcall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandgrid/sandgrid-go/apierror"
	"github.com/sandgrid/sandgrid-go/internal/logger"
)

const (
	// DefaultTimeout bounds a single HTTP request, not a whole transfer
	DefaultTimeout = 60 * time.Second

	toolPath = "/api/v1/tool/call"
	rpcPath  = "/api/v1/"
)

// Options configures a Client
type Options struct {
	// Endpoint is the service base URL, e.g. https://api.sandgrid.io
	Endpoint string

	// APIKey authenticates requests with a static bearer key.
	// Ignored when OAuth is set.
	APIKey string

	// OAuth enables client-credentials token authentication
	OAuth *OAuthOptions

	// Timeout overrides DefaultTimeout when positive
	Timeout time.Duration

	// HTTPClient overrides the constructed client (tests)
	HTTPClient *http.Client
}

// Client issues tool calls and lifecycle RPCs over HTTPS
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	log      logger.Logger
}

// New creates a tool-call client from options
func New(ctx context.Context, opts Options) (*Client, error) {
	endpoint := strings.TrimSuffix(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		return nil, apierror.New(apierror.CodeInvalidInput, "toolcall.new", "endpoint cannot be empty")
	}
	if opts.APIKey == "" && opts.OAuth == nil {
		return nil, apierror.New(apierror.CodeUnauthorized, "toolcall.new", "either an API key or OAuth credentials are required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		var err error
		httpClient, err = newHTTPClient(ctx, opts)
		if err != nil {
			return nil, err
		}

		// Fail fast on bad OAuth credentials instead of on the first call
		if opts.OAuth != nil {
			if err := VerifyToken(ctx, opts.OAuth); err != nil {
				return nil, err
			}
		}
	}

	return &Client{
		endpoint: endpoint,
		apiKey:   opts.APIKey,
		http:     httpClient,
		log:      logger.With("component", "toolcall"),
	}, nil
}

// CallTool implements Caller
func (c *Client) CallTool(ctx context.Context, sessionID, name string, args any) (string, error) {
	op := "toolcall.call_tool"

	if sessionID == "" {
		return "", apierror.New(apierror.CodeInvalidInput, op, "session id cannot be empty")
	}
	if name == "" {
		return "", apierror.New(apierror.CodeInvalidInput, op, "tool name cannot be empty")
	}

	rawArgs, err := json.Marshal(args)
	if err != nil {
		return "", apierror.Wrap(apierror.CodeInvalidInput, op, "failed to encode tool args", err)
	}

	req := toolRequest{
		RequestID: uuid.NewString(),
		SessionID: sessionID,
		Name:      name,
		Args:      rawArgs,
	}

	c.log.Debug("calling tool", "tool", name, "session_id", sessionID, "request_id", req.RequestID)

	body, err := c.post(ctx, c.endpoint+toolPath, req)
	if err != nil {
		return "", fmt.Errorf("tool %s: %w", name, err)
	}

	var resp toolResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apierror.Wrap(apierror.CodeInternal, op, "failed to decode tool result", err)
	}

	text := joinContent(resp.Content)
	if resp.IsError {
		msg := text
		if msg == "" {
			msg = "tool reported an error without a message"
		}
		return "", apierror.Wrap(apierror.CodeToolError, op, fmt.Sprintf("tool %s failed: %s", name, msg), apierror.ErrToolFailed)
	}

	return text, nil
}

// Call issues a session-lifecycle RPC and decodes the data payload into out.
// out may be nil when the caller only needs success/failure.
func (c *Client) Call(ctx context.Context, operation string, params, out any) error {
	op := "toolcall.call"

	if operation == "" {
		return apierror.New(apierror.CodeInvalidInput, op, "operation cannot be empty")
	}

	rawParams, err := json.Marshal(params)
	if err != nil {
		return apierror.Wrap(apierror.CodeInvalidInput, op, "failed to encode params", err)
	}

	req := rpcRequest{
		RequestID: uuid.NewString(),
		Params:    rawParams,
	}

	c.log.Debug("calling rpc", "operation", operation, "request_id", req.RequestID)

	body, err := c.post(ctx, c.endpoint+rpcPath+operation, req)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", operation, err)
	}

	var resp rpcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return apierror.Wrap(apierror.CodeInternal, op, "failed to decode rpc result", err)
	}

	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "rpc failed without a message"
		}
		return apierror.New(apierror.CodeToolError, op, fmt.Sprintf("rpc %s failed: %s", operation, msg))
	}

	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return apierror.Wrap(apierror.CodeInternal, op, "failed to decode rpc data", err)
		}
	}

	return nil
}

// post sends a JSON body and returns the raw response body
func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	op := "toolcall.post"

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, apierror.Wrap(apierror.CodeInternal, op, "failed to encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, apierror.Wrap(apierror.CodeInternal, op, "failed to build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apierror.Wrap(apierror.CodeTimeout, op, "request cancelled or timed out", err)
		}
		return nil, apierror.Wrap(apierror.CodeNetwork, op, "request failed", apierror.ErrTransport)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apierror.Wrap(apierror.CodeNetwork, op, "failed to read response", apierror.ErrTransport)
	}

	switch {
	case httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden:
		return nil, apierror.New(apierror.CodeUnauthorized, op, fmt.Sprintf("authentication rejected (status %d)", httpResp.StatusCode))
	case httpResp.StatusCode == http.StatusNotFound:
		return nil, apierror.Wrap(apierror.CodeNotFound, op, "resource not found", apierror.ErrSessionNotFound)
	case httpResp.StatusCode >= 400:
		return nil, apierror.New(apierror.CodeNetwork, op, fmt.Sprintf("unexpected status %d: %s", httpResp.StatusCode, truncate(string(body), 200)))
	}

	return body, nil
}

// joinContent concatenates the text items of a tool-result content list
func joinContent(items []contentItem) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0].Text
	}

	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(item.Text)
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
