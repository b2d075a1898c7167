package navigation

import (
	"context"

	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/user"
)

var (
	ErrForbiddenDestination = errors.Wrap(core.ErrPermissionDenied, "destination not allowed for this role")
	ErrNotAuthenticated     = errors.Wrap(core.ErrAuthFailure, "not authenticated")
	ErrUnknownRole          = errors.Wrap(core.ErrAuthFailure, "unknown role")
)

type StateKind string

const (
	Unauthenticated StateKind = "unauthenticated"
	RoleSelection   StateKind = "role_selection"
	Dashboard       StateKind = "dashboard"
)

type (
	State struct {
		Kind        StateKind   `json:"kind"`
		Destination Destination `json:"destination,omitempty"`
	}

	// Session is the authenticated user as seen by the navigation.
	Session struct {
		UserID   string `json:"id"`
		Role     string `json:"role"`
		SchoolID string `json:"school_id"`
	}

	Authenticator interface {
		Authenticate(ctx context.Context, email, pwd string) (user.User, error)
	}
)

func SessionOf(usr user.User) Session {
	return Session{UserID: usr.ID, Role: usr.Role, SchoolID: usr.SchoolID}
}

// Router is the navigation state machine of one user.
type Router struct {
	auth    Authenticator
	state   State
	session *Session
	history []State
}

func NewRouter(auth Authenticator) *Router {
	r := &Router{auth: auth}
	r.moveTo(State{Kind: Unauthenticated})
	return r
}

func (r *Router) moveTo(s State) {
	r.state = s
	r.history = append(r.history, s)
}

// Login authenticates the user and moves to the role selection, or straight to the dashboard
// of roles that do not pick a daily role. On failure the router stays unauthenticated.
func (r *Router) Login(ctx context.Context, email, pwd string) (State, error) {
	if r.session != nil {
		r.Logout()
	}
	usr, err := r.auth.Authenticate(ctx, email, pwd)
	if err != nil {
		return r.state, err
	}
	return r.Resume(SessionOf(usr))
}

// Resume starts the navigation of an already authenticated session.
func (r *Router) Resume(s Session) (State, error) {
	if !user.IsValidRole(s.Role) {
		return r.state, ErrUnknownRole
	}
	r.session = &s
	r.moveTo(r.landing())
	return r.state, nil
}

func (r *Router) landing() State {
	if SkipsRoleSelection(r.session.Role) {
		home, _ := Home(r.session.Role)
		return State{Kind: Dashboard, Destination: home}
	}
	return State{Kind: RoleSelection}
}

// Navigate moves to dest if the session role allows it.
func (r *Router) Navigate(dest Destination) (State, error) {
	if r.session == nil {
		return r.state, ErrNotAuthenticated
	}
	if !IsAllowed(r.session.Role, dest) {
		return r.state, ErrForbiddenDestination
	}
	r.moveTo(State{Kind: Dashboard, Destination: dest})
	return r.state, nil
}

// BackToRoleSelection returns to the role selection screen of the daily roles.
func (r *Router) BackToRoleSelection() (State, error) {
	if r.session == nil {
		return r.state, ErrNotAuthenticated
	}
	if SkipsRoleSelection(r.session.Role) {
		return r.state, ErrForbiddenDestination
	}
	r.moveTo(State{Kind: RoleSelection})
	return r.state, nil
}

// ChangeRole applies a daily role picked on DailyRoleSelection and returns to the role selection.
// The role must already be persisted by the caller.
func (r *Router) ChangeRole(role string) (State, error) {
	if r.session == nil {
		return r.state, ErrNotAuthenticated
	}
	if !user.IsDailyRole(r.session.Role) || !user.IsDailyRole(role) {
		return r.state, ErrForbiddenDestination
	}
	r.session.Role = role
	r.moveTo(State{Kind: RoleSelection})
	return r.state, nil
}

// Logout clears the session from any state.
func (r *Router) Logout() State {
	r.session = nil
	r.moveTo(State{Kind: Unauthenticated})
	return r.state
}

func (r *Router) State() State { return r.state }

func (r *Router) Session() (Session, bool) {
	if r.session == nil {
		return Session{}, false
	}
	return *r.session, true
}

// Allowed returns the destinations of the current session.
func (r *Router) Allowed() []Destination {
	if r.session == nil {
		return []Destination{}
	}
	return Destinations(r.session.Role)
}

// History returns every state visited, starting with the initial unauthenticated one.
func (r *Router) History() []State {
	return append([]State{}, r.history...)
}
