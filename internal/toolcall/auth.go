package toolcall

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sandgrid/sandgrid-go/apierror"
)

// OAuthOptions holds client-credentials grant configuration for
// organizations that front the service with an OAuth2 token issuer
// instead of static API keys.
type OAuthOptions struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// newHTTPClient builds the HTTP client used for all requests.
// With OAuth configured the returned client injects and refreshes bearer
// tokens on its own; otherwise a plain client is returned and the static
// API key is attached per-request.
func newHTTPClient(ctx context.Context, opts Options) (*http.Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if opts.OAuth == nil {
		return &http.Client{Timeout: timeout}, nil
	}

	oa := opts.OAuth
	if oa.TokenURL == "" || oa.ClientID == "" || oa.ClientSecret == "" {
		return nil, apierror.New(apierror.CodeInvalidInput, "toolcall.auth",
			"oauth requires token_url, client_id and client_secret")
	}

	cfg := &clientcredentials.Config{
		TokenURL:     oa.TokenURL,
		ClientID:     oa.ClientID,
		ClientSecret: oa.ClientSecret,
		Scopes:       oa.Scopes,
	}

	// Base client carries the timeout; oauth2 wraps it with the
	// token-injecting transport.
	base := &http.Client{Timeout: timeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	client := cfg.Client(ctx)
	client.Timeout = timeout
	return client, nil
}

// tokenExpiryLeeway keeps a freshly minted token from expiring mid-transfer
const tokenExpiryLeeway = 30 * time.Second

// VerifyToken forces an initial token fetch so credential problems surface
// at construction time instead of on the first tool call.
func VerifyToken(ctx context.Context, oa *OAuthOptions) error {
	cfg := &clientcredentials.Config{
		TokenURL:     oa.TokenURL,
		ClientID:     oa.ClientID,
		ClientSecret: oa.ClientSecret,
		Scopes:       oa.Scopes,
	}

	tok, err := cfg.Token(ctx)
	if err != nil {
		return apierror.Wrap(apierror.CodeUnauthorized, "toolcall.auth", "failed to obtain token", err)
	}
	if !tok.Expiry.IsZero() && time.Until(tok.Expiry) < tokenExpiryLeeway {
		return apierror.New(apierror.CodeUnauthorized, "toolcall.auth", "issued token expires too soon")
	}
	return nil
}
