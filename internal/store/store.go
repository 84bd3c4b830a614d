// Package store persists the client session between runs.
//
// The whole session is one typed Snapshot written atomically: the credential
// pair, identity, role and profile can never be torn apart by a partial
// write. The store is the only mutable state shared across components; it is
// written by the session manager and the gateway's refresh path and read by
// every outbound request.
package store

import (
	"time"

	"github.com/campuseats/campuseats/internal/model"
)

// Snapshot is the durable client-side session state.
type Snapshot struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *model.User    `json:"user,omitempty"`
	Role         model.Role     `json:"role,omitempty"`
	Profile      *model.Profile `json:"profile,omitempty"`
	// ExpiresAt is the access token expiry parsed from its exp claim.
	// Diagnostics only; the gateway reacts to 401s, not the clock.
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticated reports whether the snapshot holds a usable session.
func (s Snapshot) Authenticated() bool { return s.AccessToken != "" && s.User != nil }

// Store is durable session storage. Save replaces the entire snapshot;
// Load returns errs.ErrNoSession when nothing is persisted; Clear removes
// all session state at once.
type Store interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
	Clear() error
}
