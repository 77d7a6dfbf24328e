package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/grocerlabs/krogerd/internal/config"
)

// tokenEndpoint is a fake OAuth2 token endpoint counting exchanges.
type tokenEndpoint struct {
	srv       *httptest.Server
	exchanges atomic.Int64
	fail      atomic.Bool
	expiresIn int
}

func newTokenEndpoint(t *testing.T) *tokenEndpoint {
	t.Helper()
	te := &tokenEndpoint{expiresIn: 1800}
	te.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := te.exchanges.Add(1)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		assert.Equal(t, "abc", r.FormValue("client_id"))
		assert.Equal(t, "product.compact", r.FormValue("scope"))

		if te.fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":"server_error"}`)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"Bearer","expires_in":%d}`, n, te.expiresIn)
	}))
	t.Cleanup(te.srv.Close)
	return te
}

func newTestProvider(t *testing.T, te *tokenEndpoint) *Provider {
	t.Helper()
	cfg := config.KrogerConfig{
		ClientID:     "abc",
		ClientSecret: "xyz",
		TokenURL:     te.srv.URL,
		Scopes:       []string{"product.compact"},
		Timeout:      config.Duration(5 * time.Second),
	}
	return NewProvider(cfg, zap.NewNop())
}

func TestToken_CachesUntilExpiry(t *testing.T) {
	te := newTokenEndpoint(t)
	p := newTestProvider(t, te)
	ctx := context.Background()

	tok, err := p.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	// Second call is served from cache.
	tok, err = p.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.EqualValues(t, 1, te.exchanges.Load())
}

func TestToken_RefreshesWhenExpired(t *testing.T) {
	te := newTokenEndpoint(t)
	p := newTestProvider(t, te)
	ctx := context.Background()

	_, err := p.Token(ctx)
	require.NoError(t, err)

	// Age the cached token to inside the leeway window.
	p.mu.Lock()
	p.cached.Expiry = time.Now().Add(5 * time.Second)
	p.mu.Unlock()

	tok, err := p.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
	assert.EqualValues(t, 2, te.exchanges.Load())
}

func TestToken_FailureKeepsValidCachedToken(t *testing.T) {
	te := newTokenEndpoint(t)
	p := newTestProvider(t, te)
	ctx := context.Background()

	tok, err := p.Token(ctx)
	require.NoError(t, err)

	// The endpoint goes down; the cached token stays usable.
	te.fail.Store(true)

	got, err := p.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, tok, got)
}

func TestToken_ExchangeFailureSurfacesTokenError(t *testing.T) {
	te := newTokenEndpoint(t)
	te.fail.Store(true)
	p := newTestProvider(t, te)

	_, err := p.Token(context.Background())
	require.Error(t, err)

	var tokenErr *TokenError
	require.ErrorAs(t, err, &tokenErr)
}

func TestToken_ConcurrentCallersSingleExchange(t *testing.T) {
	te := newTokenEndpoint(t)
	p := newTestProvider(t, te)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := p.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "tok-1", tok)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, te.exchanges.Load())
}

func TestInvalidate(t *testing.T) {
	te := newTokenEndpoint(t)
	p := newTestProvider(t, te)
	ctx := context.Background()

	tok, err := p.Token(ctx)
	require.NoError(t, err)

	// A stale handle does not clobber the current token.
	p.Invalidate("some-old-token")
	got, err := p.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, tok, got)
	assert.EqualValues(t, 1, te.exchanges.Load())

	// The current handle does.
	p.Invalidate(tok)
	got, err = p.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got)
	assert.EqualValues(t, 2, te.exchanges.Load())
}

func TestUsableLocked_ZeroExpiryNeverStale(t *testing.T) {
	te := newTokenEndpoint(t)
	p := newTestProvider(t, te)

	p.cached = &oauth2.Token{AccessToken: "forever"}
	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "forever", tok)
	assert.EqualValues(t, 0, te.exchanges.Load())
}
