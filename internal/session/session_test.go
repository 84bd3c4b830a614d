package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuseats/campuseats/internal/api"
	"github.com/campuseats/campuseats/internal/errs"
	"github.com/campuseats/campuseats/internal/model"
	"github.com/campuseats/campuseats/internal/store"
)

type fakeBackend struct {
	loginResp *api.LoginResponse
	loginErr  error

	registerResp *api.RegisterResponse
	registerErr  error

	logoutErr   error
	logoutCalls int
	logoutToken string

	currentResp *api.CurrentUserResponse
	currentErr  error
}

var _ Backend = (*fakeBackend)(nil)

func (f *fakeBackend) Login(context.Context, api.Credentials) (*api.LoginResponse, error) {
	return f.loginResp, f.loginErr
}
func (f *fakeBackend) Register(context.Context, api.RegisterRequest) (*api.RegisterResponse, error) {
	return f.registerResp, f.registerErr
}
func (f *fakeBackend) Logout(_ context.Context, token string) error {
	f.logoutCalls++
	f.logoutToken = token
	return f.logoutErr
}
func (f *fakeBackend) CurrentUser(context.Context) (*api.CurrentUserResponse, error) {
	return f.currentResp, f.currentErr
}

func loginOK() *api.LoginResponse {
	return &api.LoginResponse{
		User:   model.User{ID: 7, Username: "alice"},
		Role:   model.RoleCustomer,
		Tokens: model.Tokens{Access: "a1", Refresh: "r1"},
	}
}

func registerReq() api.RegisterRequest {
	return api.RegisterRequest{
		Username:        "bob",
		Email:           "bob@example.com",
		Password:        "longenough",
		PasswordConfirm: "longenough",
		Role:            model.RoleSeller,
	}
}

func TestLogin_PersistsSessionAndFetchesProfile(t *testing.T) {
	t.Parallel()

	profile := &model.Profile{Name: "Alice", Hostel: "SR", RoomNo: 101}
	backend := &fakeBackend{
		loginResp: loginOK(),
		currentResp: &api.CurrentUserResponse{
			User:    model.User{ID: 7, Username: "alice", Email: "a@x.io"},
			Role:    model.RoleCustomer,
			Profile: profile,
		},
	}
	st := store.NewMemory()
	m := NewManager(backend, st, zap.NewNop())
	m.Restore()

	res := m.Login(context.Background(), "alice", "pw")
	require.True(t, res.Success, res.Error)

	snap, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "a1", snap.AccessToken)
	assert.Equal(t, "r1", snap.RefreshToken)
	require.NotNil(t, snap.User)
	assert.Equal(t, "a@x.io", snap.User.Email) // refreshed by the follow-up identity fetch
	assert.Equal(t, model.RoleCustomer, snap.Role)
	assert.Equal(t, profile, snap.Profile)

	state := m.Current()
	assert.True(t, state.Authenticated())
	assert.False(t, state.Seller())
	assert.Equal(t, profile, state.Profile)
}

func TestLogin_FailureLeavesPriorSessionUntouched(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	require.NoError(t, st.Save(store.Snapshot{
		AccessToken:  "old-a",
		RefreshToken: "old-r",
		User:         &model.User{ID: 1, Username: "carol"},
		Role:         model.RoleSeller,
	}))
	backend := &fakeBackend{loginErr: &api.Error{Status: 401, Message: "Invalid credentials"}}
	m := NewManager(backend, st, zap.NewNop())
	m.Restore()

	res := m.Login(context.Background(), "carol", "wrong")
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid credentials", res.Error)

	snap, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "old-a", snap.AccessToken)
	assert.True(t, m.Current().Authenticated())
	assert.Equal(t, "Invalid credentials", m.Current().Err)
}

func TestLogin_GenericFallbackOnTransportError(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{loginErr: errors.New("dial tcp: connection refused")}
	m := NewManager(backend, store.NewMemory(), zap.NewNop())
	m.Restore()

	res := m.Login(context.Background(), "alice", "pw")
	assert.False(t, res.Success)
	assert.Equal(t, "Login failed", res.Error)
}

func TestLogin_ValidatesInputBeforeDispatch(t *testing.T) {
	t.Parallel()

	m := NewManager(&fakeBackend{}, store.NewMemory(), zap.NewNop())
	m.Restore()

	res := m.Login(context.Background(), "", "")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestLogin_ProfileFetchFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{
		loginResp:  loginOK(),
		currentErr: errors.New("boom"),
	}
	st := store.NewMemory()
	m := NewManager(backend, st, zap.NewNop())
	m.Restore()

	res := m.Login(context.Background(), "alice", "pw")
	require.True(t, res.Success)

	snap, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "alice", snap.User.Username)
	assert.Nil(t, snap.Profile)
}

func TestRegister_DeclaredRoleIsAuthoritative(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{
		registerResp: &api.RegisterResponse{
			User:   model.User{ID: 9, Username: "bob"},
			Tokens: model.Tokens{Access: "a1", Refresh: "r1"},
		},
	}
	st := store.NewMemory()
	m := NewManager(backend, st, zap.NewNop())
	m.Restore()

	res := m.Register(context.Background(), registerReq())
	require.True(t, res.Success, res.Error)

	snap, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, model.RoleSeller, snap.Role)
	assert.True(t, m.Current().Seller())
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	m := NewManager(&fakeBackend{}, store.NewMemory(), zap.NewNop())
	m.Restore()

	req := registerReq()
	req.PasswordConfirm = "different"
	res := m.Register(context.Background(), req)
	assert.False(t, res.Success)
	assert.Equal(t, "passwords don't match", res.Error)

	req = registerReq()
	req.Role = "admin"
	res = m.Register(context.Background(), req)
	assert.False(t, res.Success)

	req = registerReq()
	req.Email = "not-an-email"
	res = m.Register(context.Background(), req)
	assert.False(t, res.Success)
}

// Teardown is atomic both when the server call succeeds and when it fails.
func TestLogout_ClearsEverythingOnBothPaths(t *testing.T) {
	t.Parallel()

	for name, logoutErr := range map[string]error{
		"server reachable":   nil,
		"server unreachable": errors.New("dial tcp: no route to host"),
	} {
		t.Run(name, func(t *testing.T) {
			backend := &fakeBackend{loginResp: loginOK(), currentErr: errs.ErrNotFound, logoutErr: logoutErr}
			st := store.NewMemory()
			m := NewManager(backend, st, zap.NewNop())
			m.Restore()
			require.True(t, m.Login(context.Background(), "alice", "pw").Success)

			m.Logout(context.Background())

			assert.Equal(t, 1, backend.logoutCalls)
			assert.Equal(t, "r1", backend.logoutToken)
			_, err := st.Load()
			assert.ErrorIs(t, err, errs.ErrNoSession)
			assert.False(t, m.Current().Authenticated())
		})
	}
}

func TestRestore_RehydratesWithoutNetwork(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	require.NoError(t, st.Save(store.Snapshot{
		AccessToken:  "a1",
		RefreshToken: "r1",
		User:         &model.User{ID: 7, Username: "alice"},
		Role:         model.RoleSeller,
	}))
	// A nil-ish backend proves no network call happens during Restore.
	m := NewManager(&fakeBackend{loginErr: errors.New("must not be called")}, st, zap.NewNop())

	assert.True(t, m.Current().Loading)
	m.Restore()

	state := m.Current()
	assert.False(t, state.Loading)
	assert.True(t, state.Seller())
}

func TestRestore_EmptyStoreResolvesUnauthenticated(t *testing.T) {
	t.Parallel()

	m := NewManager(&fakeBackend{}, store.NewMemory(), zap.NewNop())
	m.Restore()

	state := m.Current()
	assert.False(t, state.Loading)
	assert.False(t, state.Authenticated())
}
