package navigation

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/user"
)

type authMock map[string]user.User

func (m authMock) Authenticate(_ context.Context, email, pwd string) (user.User, error) {
	usr, ok := m[email]
	if !ok || pwd != "secret" {
		return user.User{}, core.ErrAuthFailure
	}
	return usr, nil
}

var users = authMock{
	"lead@test.com":   {ID: "u-1", Role: user.RoleTeamLead, SchoolID: "s-1"},
	"staff@test.com":  {ID: "u-2", Role: user.RoleStaff, SchoolID: "s-1"},
	"sub@test.com":    {ID: "u-3", Role: user.RoleSubstitute, SchoolID: "s-1"},
	"driver@test.com": {ID: "u-4", Role: user.RoleBusDriver, SchoolID: "s-1"},
	"parent@test.com": {ID: "u-5", Role: user.RoleParent, SchoolID: "s-1"},
	"admin@test.com":  {ID: "u-6", Role: user.RoleAdmin, SchoolID: "s-1"},
	"ghost@test.com":  {ID: "u-7", Role: "janitor", SchoolID: "s-1"},
}

func TestRouter_Login(t *testing.T) {
	tests := []struct {
		email string
		want  State
	}{
		{email: "lead@test.com", want: State{Kind: RoleSelection}},
		{email: "staff@test.com", want: State{Kind: RoleSelection}},
		{email: "sub@test.com", want: State{Kind: Dashboard, Destination: Agenda}},
		{email: "driver@test.com", want: State{Kind: Dashboard, Destination: BusDriverDashboard}},
		{email: "parent@test.com", want: State{Kind: Dashboard, Destination: ParentDashboard}},
		{email: "admin@test.com", want: State{Kind: Dashboard, Destination: AdminDashboard}},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			r := NewRouter(users)
			got, err := r.Login(context.Background(), tt.email, "secret")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			s, ok := r.Session()
			require.True(t, ok)
			assert.Equal(t, users[tt.email].ID, s.UserID)
			assert.Equal(t, "s-1", s.SchoolID)
		})
	}
}

func TestRouter_LoginFailure(t *testing.T) {
	tests := []struct {
		name  string
		email string
		pwd   string
	}{
		{name: "wrong password", email: "lead@test.com", pwd: "nope"},
		{name: "unknown email", email: "who@test.com", pwd: "secret"},
		{name: "unknown role", email: "ghost@test.com", pwd: "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(users)
			got, err := r.Login(context.Background(), tt.email, tt.pwd)
			assert.Equal(t, core.ErrAuthFailure, errors.Cause(err))
			assert.Equal(t, State{Kind: Unauthenticated}, got)
			_, ok := r.Session()
			assert.False(t, ok)
		})
	}
}

func TestRouter_SubstituteNeverVisitsRoleSelection(t *testing.T) {
	r := NewRouter(users)
	_, err := r.Login(context.Background(), "sub@test.com", "secret")
	require.NoError(t, err)
	_, err = r.Navigate(Calendar)
	require.NoError(t, err)
	_, err = r.BackToRoleSelection()
	assert.Equal(t, ErrForbiddenDestination, err)
	_, err = r.Navigate(Agenda)
	require.NoError(t, err)

	for _, s := range r.History() {
		assert.NotEqual(t, RoleSelection, s.Kind)
	}
}

func TestRouter_Navigate(t *testing.T) {
	tests := []struct {
		email   string
		dest    Destination
		allowed bool
	}{
		{email: "lead@test.com", dest: WhatsToday, allowed: true},
		{email: "lead@test.com", dest: DailyActivities, allowed: true},
		{email: "lead@test.com", dest: AdminDashboard},
		{email: "staff@test.com", dest: TrackColleaguesGroups, allowed: true},
		{email: "staff@test.com", dest: WhatsToday},
		{email: "staff@test.com", dest: FritidsledareDashboard},
		{email: "sub@test.com", dest: MyGroup},
		{email: "driver@test.com", dest: BusDetails, allowed: true},
		{email: "driver@test.com", dest: Calendar},
		{email: "parent@test.com", dest: BusDriverDashboard},
		{email: "admin@test.com", dest: ViewDashboards, allowed: true},
		{email: "admin@test.com", dest: FritidspersonalDashboard, allowed: true},
	}
	for _, tt := range tests {
		t.Run(tt.email+" "+string(tt.dest), func(t *testing.T) {
			r := NewRouter(users)
			before, err := r.Login(context.Background(), tt.email, "secret")
			require.NoError(t, err)

			got, err := r.Navigate(tt.dest)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, State{Kind: Dashboard, Destination: tt.dest}, got)
			} else {
				assert.Equal(t, ErrForbiddenDestination, err)
				assert.Equal(t, before, got)
			}
		})
	}
}

func TestDestinations_TeamLeadSupersetOfStaff(t *testing.T) {
	lead := Destinations(user.RoleTeamLead)
	for _, d := range Destinations(user.RoleStaff) {
		assert.Contains(t, lead, d)
	}
	assert.Greater(t, len(lead), len(Destinations(user.RoleStaff)))
	assert.Empty(t, Destinations("janitor"))
}

func TestRouter_ChangeRole(t *testing.T) {
	r := NewRouter(users)
	_, err := r.Login(context.Background(), "staff@test.com", "secret")
	require.NoError(t, err)
	_, err = r.Navigate(DailyRoleSelection)
	require.NoError(t, err)

	got, err := r.ChangeRole(user.RoleTeamLead)
	require.NoError(t, err)
	assert.Equal(t, State{Kind: RoleSelection}, got)
	_, err = r.Navigate(WhatsToday)
	assert.NoError(t, err)

	_, err = r.ChangeRole(user.RoleAdmin)
	assert.Equal(t, ErrForbiddenDestination, err)
}

func TestRouter_Logout(t *testing.T) {
	r := NewRouter(users)
	assert.Equal(t, State{Kind: Unauthenticated}, r.Logout())

	_, err := r.Login(context.Background(), "lead@test.com", "secret")
	require.NoError(t, err)
	_, err = r.Navigate(MyGroup)
	require.NoError(t, err)

	assert.Equal(t, State{Kind: Unauthenticated}, r.Logout())
	_, ok := r.Session()
	assert.False(t, ok)
	assert.Empty(t, r.Allowed())

	_, err = r.Navigate(MyGroup)
	assert.Equal(t, ErrNotAuthenticated, err)
}
