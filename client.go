// Package sandgrid is the Go client for the SandGrid agent-sandbox
// service. A Client owns the HTTP transport and the session lifecycle;
// a Session exposes the in-sandbox capabilities (filesystem, shell,
// object storage, windows, applications) as typed sub-clients.
package sandgrid

import (
	"context"
	"net/http"
	"time"

	"github.com/sandgrid/sandgrid-go/apierror"
	"github.com/sandgrid/sandgrid-go/internal/config"
	"github.com/sandgrid/sandgrid-go/internal/logger"
	"github.com/sandgrid/sandgrid-go/internal/toolcall"
)

// Config configures a Client
type Config struct {
	// Endpoint is the service base URL, e.g. https://api.sandgrid.io
	Endpoint string

	// Region is the default region for new sessions
	Region string

	// APIKey authenticates requests with a static bearer key.
	// Ignored when OAuth is set.
	APIKey string

	// OAuth enables client-credentials token authentication
	OAuth *OAuthConfig

	// Timeout bounds a single request; zero selects the default
	Timeout time.Duration

	// HTTPClient overrides the constructed transport (tests)
	HTTPClient *http.Client
}

// OAuthConfig holds client-credentials grant settings
type OAuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Client talks to the SandGrid service
type Client struct {
	tc     *toolcall.Client
	region string
	log    logger.Logger
}

// NewClient creates a Client from explicit configuration
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	opts := toolcall.Options{
		Endpoint:   cfg.Endpoint,
		APIKey:     cfg.APIKey,
		Timeout:    cfg.Timeout,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.OAuth != nil {
		opts.OAuth = &toolcall.OAuthOptions{
			TokenURL:     cfg.OAuth.TokenURL,
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			Scopes:       cfg.OAuth.Scopes,
		}
	}

	tc, err := toolcall.New(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &Client{
		tc:     tc,
		region: cfg.Region,
		log:    logger.With("component", "client"),
	}, nil
}

// NewClientFromFile creates a Client from a configuration file. An empty
// path searches the default locations. The SDK logger is initialized from
// the file's log section.
func NewClientFromFile(ctx context.Context, path string) (*Client, error) {
	fileCfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(fileCfg.LoggerConfig()); err != nil {
		return nil, err
	}

	cfg := Config{
		Endpoint: fileCfg.Endpoint,
		Region:   fileCfg.Region,
		APIKey:   fileCfg.APIKey,
		Timeout:  fileCfg.Timeout(),
	}
	if fileCfg.OAuth.Enabled() {
		cfg.OAuth = &OAuthConfig{
			TokenURL:     fileCfg.OAuth.TokenURL,
			ClientID:     fileCfg.OAuth.ClientID,
			ClientSecret: fileCfg.OAuth.ClientSecret,
			Scopes:       fileCfg.OAuth.Scopes,
		}
	}

	return NewClient(ctx, cfg)
}

// SessionInfo is the lifecycle metadata of a session
type SessionInfo struct {
	SessionID string            `json:"sessionId"`
	Status    string            `json:"status,omitempty"`
	Region    string            `json:"region,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	CreatedAt string            `json:"createdAt,omitempty"`
}

// CreateSessionOptions selects how a session is provisioned
type CreateSessionOptions struct {
	// Region overrides the client's default region
	Region string

	// ImageID selects the sandbox image; empty uses the service default
	ImageID string

	// Labels are attached to the session for later filtering
	Labels map[string]string
}

type createSessionParams struct {
	Region  string            `json:"region,omitempty"`
	ImageID string            `json:"imageId,omitempty"`
	Labels  map[string]string `json:"labels,omitempty"`
}

// CreateSession provisions a new sandbox session
func (c *Client) CreateSession(ctx context.Context, opts *CreateSessionOptions) (*Session, error) {
	params := createSessionParams{Region: c.region}
	if opts != nil {
		if opts.Region != "" {
			params.Region = opts.Region
		}
		params.ImageID = opts.ImageID
		params.Labels = opts.Labels
	}

	var info SessionInfo
	if err := c.tc.Call(ctx, "session/create", params, &info); err != nil {
		return nil, err
	}
	if info.SessionID == "" {
		return nil, apierror.New(apierror.CodeInternal, "client.create_session", "service returned no session id")
	}

	c.log.Info("session created", "session_id", info.SessionID, "region", info.Region)

	return newSession(c, info), nil
}

type sessionIDParams struct {
	SessionID string `json:"sessionId"`
}

// GetSession attaches to an existing session by id
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, apierror.New(apierror.CodeInvalidInput, "client.get_session", "session id cannot be empty")
	}

	var info SessionInfo
	if err := c.tc.Call(ctx, "session/get", sessionIDParams{SessionID: sessionID}, &info); err != nil {
		return nil, err
	}

	return newSession(c, info), nil
}

type listSessionsParams struct {
	Labels map[string]string `json:"labels,omitempty"`
}

type listSessionsResult struct {
	Sessions []SessionInfo `json:"sessions"`
}

// ListSessions returns the caller's sessions, optionally filtered by
// labels (all given labels must match)
func (c *Client) ListSessions(ctx context.Context, labels map[string]string) ([]SessionInfo, error) {
	var result listSessionsResult
	if err := c.tc.Call(ctx, "session/list", listSessionsParams{Labels: labels}, &result); err != nil {
		return nil, err
	}
	return result.Sessions, nil
}

// DeleteSession terminates a session and releases its resources
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apierror.New(apierror.CodeInvalidInput, "client.delete_session", "session id cannot be empty")
	}

	if err := c.tc.Call(ctx, "session/delete", sessionIDParams{SessionID: sessionID}, nil); err != nil {
		return err
	}

	c.log.Info("session deleted", "session_id", sessionID)
	return nil
}
