// Package gateway dispatches API requests with bearer credentials attached
// and transparently recovers from an expired access token.
//
// A request that comes back 401 is retried exactly once after the refresh
// protocol succeeds; the new access token is persisted before the retry goes
// out, so the retried request and any concurrently issued request both
// observe it. A 401 on the retried request, or a failed refresh, is a hard
// session kill: the store is cleared and errs.ErrSessionExpired is returned.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/campuseats/campuseats/internal/errs"
	"github.com/campuseats/campuseats/internal/store"
)

const refreshPath = "/auth/token/refresh/"

// Request describes one outbound API call. The body is held as bytes so a
// retry can replay it verbatim.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
	// Anonymous requests (login, register) skip the bearer header and the
	// refresh-and-retry machinery: a 401 there means bad credentials, not an
	// expired session, and must not tear the existing session down.
	Anonymous bool
}

// Response is a fully drained API response.
type Response struct {
	Status int
	Body   []byte
}

// Gateway wraps an HTTP client with credential attachment and the
// refresh-once retry protocol.
type Gateway struct {
	base      string
	http      *http.Client
	store     store.Store
	log       *zap.Logger
	onExpired func()

	// refreshMu serializes refreshes; concurrent 401s coalesce into one
	// refresh via the stale-token check in refreshAccess.
	refreshMu sync.Mutex
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option { return func(g *Gateway) { g.http = c } }

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option { return func(g *Gateway) { g.log = l } }

// WithSessionExpiredHook registers a callback fired once per hard session
// kill, after the store has been cleared. The CLI uses it to route the user
// back to login.
func WithSessionExpiredHook(fn func()) Option { return func(g *Gateway) { g.onExpired = fn } }

// New returns a Gateway for the API rooted at base (e.g. "http://host/api").
func New(base string, st store.Store, opts ...Option) *Gateway {
	g := &Gateway{
		base:  strings.TrimRight(base, "/"),
		http:  &http.Client{Timeout: 30 * time.Second},
		store: st,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// attempt pairs a request with its retry generation. Requests themselves are
// never mutated; each dispatch gets its own attempt value.
type attempt struct {
	req     *Request
	retried bool
}

// Do dispatches the request, applying the refresh-once protocol for
// authenticated calls.
func (g *Gateway) Do(ctx context.Context, req *Request) (*Response, error) {
	att := attempt{req: req}
	for {
		resp, token, err := g.dispatch(ctx, att)
		if err != nil {
			return nil, err
		}
		if req.Anonymous || resp.Status != http.StatusUnauthorized {
			return resp, nil
		}
		if att.retried {
			// The retried request was rejected again; do not loop.
			g.expire("retried request rejected")
			return nil, errs.ErrSessionExpired
		}
		if err := g.refreshAccess(ctx, token); err != nil {
			g.expire("refresh failed")
			return nil, errs.ErrSessionExpired
		}
		att = attempt{req: req, retried: true}
	}
}

// dispatch performs a single HTTP exchange and reports the access token it
// was sent with, so the refresh path can detect tokens already replaced by a
// concurrent refresh.
func (g *Gateway) dispatch(ctx context.Context, att attempt) (*Response, string, error) {
	u := g.base + att.req.Path
	if len(att.req.Query) > 0 {
		u += "?" + att.req.Query.Encode()
	}

	var body io.Reader
	if len(att.req.Body) > 0 {
		body = bytes.NewReader(att.req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, att.req.Method, u, body)
	if err != nil {
		return nil, "", err
	}
	if att.req.ContentType != "" {
		httpReq.Header.Set("Content-Type", att.req.ContentType)
	}
	if rid, err := uuid.NewV4(); err == nil {
		httpReq.Header.Set("X-Request-Id", rid.String())
	}

	var token string
	if !att.req.Anonymous {
		if snap, err := g.store.Load(); err == nil && snap.AccessToken != "" {
			token = snap.AccessToken
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return &Response{Status: resp.StatusCode, Body: b}, token, nil
}

// refreshAccess exchanges the stored refresh token for a new access token
// and persists it before returning. staleToken is the access token the
// failed request carried; if the stored token already differs, another
// caller refreshed first and there is nothing left to do.
func (g *Gateway) refreshAccess(ctx context.Context, staleToken string) error {
	g.refreshMu.Lock()
	defer g.refreshMu.Unlock()

	snap, err := g.store.Load()
	if err != nil {
		return err
	}
	if snap.AccessToken != staleToken && snap.AccessToken != "" {
		return nil
	}
	if snap.RefreshToken == "" {
		return errs.ErrUnauthorized
	}

	payload, err := json.Marshal(map[string]string{"refresh": snap.RefreshToken})
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.base+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: refresh rejected with status %d", errs.ErrUnauthorized, resp.StatusCode)
	}

	var out struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	if out.Access == "" {
		return fmt.Errorf("%w: refresh response missing access token", errs.ErrUnauthorized)
	}

	// The refresh token is long-lived and not rotated here; only the access
	// token changes. Persist before any retry is dispatched.
	snap.AccessToken = out.Access
	snap.ExpiresAt = TokenExpiry(out.Access)
	if err := g.store.Save(snap); err != nil {
		return err
	}
	g.log.Debug("access token refreshed", zap.Time("expires_at", snap.ExpiresAt))
	return nil
}

// expire tears the local session down: storage is cleared as a whole and the
// expiry hook fires. Callers return errs.ErrSessionExpired afterwards.
func (g *Gateway) expire(reason string) {
	g.log.Warn("session expired", zap.String("reason", reason))
	if err := g.store.Clear(); err != nil {
		g.log.Warn("clearing session store", zap.Error(err))
	}
	if g.onExpired != nil {
		g.onExpired()
	}
}

// TokenExpiry extracts the exp claim from a JWT without verifying it. The
// zero time is returned for opaque or claimless tokens; expiry is only used
// for display.
func TokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
