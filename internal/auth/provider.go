// Package auth acquires and caches OAuth2 bearer tokens for the Kroger API
// using the client-credentials grant.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/grocerlabs/krogerd/internal/config"
)

// expiryLeeway is subtracted from a token's lifetime so a token is refreshed
// shortly before the upstream would reject it.
const expiryLeeway = 30 * time.Second

// TokenError reports a failed token exchange. The client maps it to an
// authentication failure on the tool-call surface.
type TokenError struct {
	Err error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// Provider exchanges client credentials for bearer tokens and caches the
// result until expiry.
//
// All refreshes are serialized through a single mutex: concurrent callers
// either see the cached token or wait for the one in-flight exchange. A
// failed exchange never discards a previously cached token, so a still-valid
// token remains usable even while the token endpoint is down.
type Provider struct {
	cc         *clientcredentials.Config
	httpClient *http.Client
	logger     *zap.Logger
	leeway     time.Duration

	mu     sync.Mutex
	cached *oauth2.Token
}

// NewProvider creates a token provider from the Kroger configuration.
func NewProvider(cfg config.KrogerConfig, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cc: &clientcredentials.Config{
			ClientID:     cfg.ClientID.Value(),
			ClientSecret: cfg.ClientSecret.Value(),
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: &http.Client{Timeout: cfg.Timeout.Duration()},
		logger:     logger,
		leeway:     expiryLeeway,
	}
}

// Token returns a valid bearer token, performing a client-credentials
// exchange if no usable token is cached.
func (p *Provider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.usableLocked() {
		return p.cached.AccessToken, nil
	}

	// The exchange honors the caller's context but uses our own HTTP client
	// so the config timeout applies.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	tok, err := p.cc.Token(ctx)
	if err != nil {
		p.logger.Warn("token exchange failed", zap.Error(err))
		return "", &TokenError{Err: err}
	}

	p.cached = tok
	p.logger.Debug("token acquired",
		zap.Time("expires_at", tok.Expiry),
		zap.String("token_type", tok.TokenType))

	return tok.AccessToken, nil
}

// Invalidate drops the cached token, but only if tok is still the cached
// value. When several in-flight requests hit a 401 with the same stale
// token, only the first invalidation takes effect and later ones are no-ops
// against the replacement token.
func (p *Provider) Invalidate(tok string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && p.cached.AccessToken == tok {
		p.cached = nil
		p.logger.Debug("cached token invalidated")
	}
}

// usableLocked reports whether the cached token can still be handed out.
// Tokens without an expiry (no expires_in from the server) never go stale
// locally; the 401 path invalidates them instead.
func (p *Provider) usableLocked() bool {
	if p.cached == nil || p.cached.AccessToken == "" {
		return false
	}
	if p.cached.Expiry.IsZero() {
		return true
	}
	return time.Until(p.cached.Expiry) > p.leeway
}
