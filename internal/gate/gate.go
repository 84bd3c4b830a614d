// Package gate decides whether a navigation target may render for the
// current session. The decision is a pure function of the session state, so
// it can be re-evaluated on every navigation without accumulating drift.
package gate

import (
	"github.com/campuseats/campuseats/internal/model"
	"github.com/campuseats/campuseats/internal/session"
)

// Requirement is the access level a route declares.
type Requirement int

const (
	// Public routes render for anyone.
	Public Requirement = iota
	// Authenticated routes require a logged-in identity of any role.
	Authenticated
	// SellerOnly routes additionally require the seller role.
	SellerOnly
)

// Decision is the gate's verdict.
type Decision int

const (
	// Allow renders the route.
	Allow Decision = iota
	// Wait renders a transient placeholder; the session is still loading
	// and no redirect decision is made yet.
	Wait
	// RedirectLogin sends the user to the login entry point.
	RedirectLogin
	// RedirectHome sends the user to the default authenticated landing route.
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Decide maps (loading, authenticated, role) to a verdict for the given
// requirement. Public routes never redirect, even mid-load.
func Decide(req Requirement, st session.State) Decision {
	if req == Public {
		return Allow
	}
	if st.Loading {
		return Wait
	}
	if !st.Authenticated() {
		return RedirectLogin
	}
	if req == SellerOnly && st.Role != model.RoleSeller {
		return RedirectHome
	}
	return Allow
}
