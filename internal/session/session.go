// Package session owns the client-side authentication state.
//
// The Manager is the single writer of identity state: it persists the
// credential pair, identity, role and profile as one snapshot and publishes
// a read-only State to every other component. Loading is true only during
// the initial rehydration from storage.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/campuseats/campuseats/internal/api"
	"github.com/campuseats/campuseats/internal/gateway"
	"github.com/campuseats/campuseats/internal/model"
	"github.com/campuseats/campuseats/internal/store"
)

// Backend is the slice of the API the manager needs. *api.Client satisfies it.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) (*api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	CurrentUser(ctx context.Context) (*api.CurrentUserResponse, error)
}

// State is the published authentication state. Zero value: logged out.
type State struct {
	User    *model.User
	Role    model.Role
	Profile *model.Profile
	Loading bool
	Err     string
}

// Authenticated reports whether an identity is present.
func (s State) Authenticated() bool { return s.User != nil }

// Seller reports whether the identity carries the seller role.
func (s State) Seller() bool { return s.Authenticated() && s.Role == model.RoleSeller }

// Result is the outcome of a login or register call.
type Result struct {
	Success bool
	Error   string
}

// Manager owns login, register, logout and identity refresh.
type Manager struct {
	api   Backend
	store store.Store
	log   *zap.Logger

	mu    sync.Mutex
	state State
}

// NewManager returns a manager in the loading state; call Restore before
// reading Current.
func NewManager(backend Backend, st store.Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{api: backend, store: st, log: log, state: State{Loading: true}}
}

// Restore rehydrates the session synchronously from storage. No network
// call is made: possession of a stored access token is enough until a
// request proves otherwise.
func (m *Manager) Restore() {
	snap, err := m.store.Load()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{}
	if err == nil && snap.Authenticated() {
		m.state.User = snap.User
		m.state.Role = snap.Role
		m.state.Profile = snap.Profile
	}
}

// Current returns a copy of the published state.
func (m *Manager) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Login authenticates, persists the session atomically and refreshes the
// extended profile. On failure the prior session state is left untouched.
func (m *Manager) Login(ctx context.Context, username, password string) Result {
	in := loginInput{Username: username, Password: password}
	if err := in.Validate(); err != nil {
		return m.failure(err.Error())
	}

	resp, err := m.api.Login(ctx, api.Credentials{Username: username, Password: password})
	if err != nil {
		return m.failure(loginErrorMessage(err))
	}

	if err := m.persist(resp.User, resp.Role, nil, resp.Tokens); err != nil {
		return m.failure("saving session: " + err.Error())
	}

	// Best effort: the user is authenticated by token possession alone.
	m.fetchIdentity(ctx)

	return Result{Success: true}
}

// Register creates an account and persists the session. The declared role
// is authoritative; the register endpoint does not echo it back.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) Result {
	if err := registerInput(req).Validate(); err != nil {
		return m.failure(err.Error())
	}

	resp, err := m.api.Register(ctx, req)
	if err != nil {
		return m.failure(registerErrorMessage(err))
	}

	if err := m.persist(resp.User, req.Role, nil, resp.Tokens); err != nil {
		return m.failure("saving session: " + err.Error())
	}
	return Result{Success: true}
}

// Logout invalidates the refresh token server-side (best effort) and always
// tears the local session down, whatever the server call does.
func (m *Manager) Logout(ctx context.Context) {
	defer m.teardown()

	snap, err := m.store.Load()
	if err != nil || snap.RefreshToken == "" {
		return
	}
	if err := m.api.Logout(ctx, snap.RefreshToken); err != nil {
		m.log.Warn("server-side token invalidation failed", zap.Error(err))
	}
}

// fetchIdentity refreshes the stored identity and profile from the server.
// Failures are logged and swallowed; this never surfaces to the UI.
func (m *Manager) fetchIdentity(ctx context.Context) {
	cur, err := m.api.CurrentUser(ctx)
	if err != nil {
		m.log.Warn("fetching current user", zap.Error(err))
		return
	}

	snap, err := m.store.Load()
	if err != nil {
		m.log.Warn("loading session for identity refresh", zap.Error(err))
		return
	}
	user := cur.User
	snap.User = &user
	snap.Role = cur.Role
	snap.Profile = cur.Profile
	if err := m.store.Save(snap); err != nil {
		m.log.Warn("saving refreshed identity", zap.Error(err))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.User = &user
	m.state.Role = cur.Role
	m.state.Profile = cur.Profile
}

// persist writes the full snapshot in one atomic save and publishes the new
// state.
func (m *Manager) persist(user model.User, role model.Role, profile *model.Profile, tokens model.Tokens) error {
	snap := store.Snapshot{
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
		User:         &user,
		Role:         role,
		Profile:      profile,
		ExpiresAt:    gateway.TokenExpiry(tokens.Access),
	}
	if err := m.store.Save(snap); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{User: snap.User, Role: role, Profile: profile}
	return nil
}

// failure records the error for observers without touching identity state.
func (m *Manager) failure(msg string) Result {
	m.mu.Lock()
	m.state.Err = msg
	m.mu.Unlock()
	return Result{Success: false, Error: msg}
}

func (m *Manager) teardown() {
	if err := m.store.Clear(); err != nil {
		m.log.Warn("clearing session store", zap.Error(err))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{}
}

// loginErrorMessage extracts the server's message, with a generic fallback.
func loginErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Login failed"
}

func registerErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Registration failed"
}
