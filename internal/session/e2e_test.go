package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuseats/campuseats/internal/api"
	"github.com/campuseats/campuseats/internal/gateway"
	"github.com/campuseats/campuseats/internal/store"
)

// Full pipeline against a counting mock server: login issues a1/r1, the
// access token expires, the next call is recovered by one refresh and one
// retry, and storage ends up holding a2/r1.
func TestEndToEnd_LoginRefreshRetry(t *testing.T) {
	t.Parallel()

	var userAttempts int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":      map[string]any{"id": 7, "username": "alice"},
			"user_type": "user",
			"tokens":    map[string]string{"access": "a1", "refresh": "r1"},
		})
	})
	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Refresh string `json:"refresh"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "r1", in.Refresh)
		_ = json.NewEncoder(w).Encode(map[string]string{"access": "a2"})
	})
	mux.HandleFunc("/auth/user/", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&userAttempts, 1)
		// a1 is accepted right after login, then treated as expired.
		want := "Bearer a1"
		if n > 1 {
			want = "Bearer a2"
		}
		if r.Header.Get("Authorization") != want {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":      map[string]any{"id": 7, "username": "alice", "email": "a@x.io"},
			"user_type": "user",
			"profile":   map[string]any{"id": 1, "name": "Alice", "hostel": "SR", "room_no": 101},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st := store.NewMemory()
	client := api.New(gateway.New(srv.URL, st))
	m := NewManager(client, st, zap.NewNop())
	m.Restore()

	require.True(t, m.Login(context.Background(), "alice", "pw").Success)

	snap, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "a1", snap.AccessToken)
	assert.Equal(t, "r1", snap.RefreshToken)

	// The next identity call goes out with the now-expired a1, gets a 401,
	// refreshes to a2 and is retried exactly once.
	cur, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", cur.User.Email)
	assert.EqualValues(t, 3, atomic.LoadInt32(&userAttempts)) // login follow-up + expired call + retry

	snap, err = st.Load()
	require.NoError(t, err)
	assert.Equal(t, "a2", snap.AccessToken)
	assert.Equal(t, "r1", snap.RefreshToken)
}
