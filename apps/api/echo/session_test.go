package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/planitkids/fritids/apps/api/echo"
	"github.com/planitkids/fritids/core/navigation"
	"github.com/planitkids/fritids/core/user"
)

func login(t *testing.T, env testEnv, email string) echoapi.SessionResponse {
	req, rec := newRequest(http.MethodPost, "/v1/auth/login", marchallObj(t, echoapi.LoginRequest{Email: email, Password: pwd}))
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echoapi.SessionResponse
	unmarshal(t, rec, &resp)
	return resp
}

func Test_authApi_login(t *testing.T) {
	env := setup(t)
	staff := env.createUser(t, "Enes", "enes@skolan.se", user.RoleStaff)
	env.createUser(t, "Sam", "sam@skolan.se", user.RoleSubstitute)
	env.createUser(t, "Bo", "bo@skolan.se", user.RoleBusDriver)

	t.Run("daily role goes through role selection", func(t *testing.T) {
		resp := login(t, env, " ENES@skolan.se")
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, staff.ID, resp.User.ID)
		assert.Equal(t, navigation.Session{UserID: staff.ID, Role: user.RoleStaff, SchoolID: school}, resp.Session)
		assert.Equal(t, navigation.State{Kind: navigation.RoleSelection}, resp.State)
		assert.Equal(t, navigation.Destinations(user.RoleStaff), resp.Destinations)
	})
	t.Run("substitute lands on the agenda", func(t *testing.T) {
		resp := login(t, env, "sam@skolan.se")
		assert.Equal(t, navigation.State{Kind: navigation.Dashboard, Destination: navigation.Agenda}, resp.State)
	})
	t.Run("bus driver lands on the dashboard", func(t *testing.T) {
		resp := login(t, env, "bo@skolan.se")
		assert.Equal(t, navigation.State{Kind: navigation.Dashboard, Destination: navigation.BusDriverDashboard}, resp.State)
	})

	tests := []httpTest{
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/auth/login",
			body:     marchallObj(t, echoapi.LoginRequest{Email: "enes@skolan.se", Password: "nope"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/v1/auth/login",
			body:     marchallObj(t, echoapi.LoginRequest{Email: "who@skolan.se", Password: pwd}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/auth/login", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
	}
	runHTTPTests(t, env, tests)
}

func Test_authApi_session(t *testing.T) {
	env := setup(t)
	lead := env.createUser(t, "Anna", "anna@skolan.se", user.RoleTeamLead)
	token := getToken(t, env.conf, lead)

	runHTTPTests(t, env, []httpTest{
		{name: "auth required", path: "/v1/auth/session", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "bad token", path: "/v1/auth/session", token: "not-a-token",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{name: "me", path: "/v1/users/me", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, lead)},
	})

	req, rec := newAuthRequest(http.MethodGet, "/v1/auth/session", token)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echoapi.SessionResponse
	unmarshal(t, rec, &resp)
	assert.Empty(t, resp.Token)
	assert.Equal(t, lead.ID, resp.Session.UserID)
	assert.Equal(t, navigation.State{Kind: navigation.RoleSelection}, resp.State)
}

func Test_authApi_logout(t *testing.T) {
	env := setup(t)
	env.createUser(t, "Enes", "enes@skolan.se", user.RoleStaff)
	token := login(t, env, "enes@skolan.se").Token

	req, rec := newAuthRequest(http.MethodPost, "/v1/auth/logout", token)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echoapi.StateResponse
	unmarshal(t, rec, &resp)
	assert.Equal(t, navigation.State{Kind: navigation.Unauthenticated}, resp.State)
	assert.Empty(t, resp.Destinations)

	runHTTPTests(t, env, []httpTest{
		{
			name: "revoked token", path: "/v1/auth/session", token: token,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "token has been revoked"}),
		},
	})

	// a new login gets a new token
	assert.NotEqual(t, token, login(t, env, "enes@skolan.se").Token)
}

func Test_authApi_navigation(t *testing.T) {
	env := setup(t)
	staffToken := getToken(t, env.conf, env.createUser(t, "Enes", "enes@skolan.se", user.RoleStaff))
	subToken := getToken(t, env.conf, env.createUser(t, "Sam", "sam@skolan.se", user.RoleSubstitute))
	adminToken := getToken(t, env.conf, env.createUser(t, "Ada", "ada@skolan.se", user.RoleAdmin))

	navigate := func(dest navigation.Destination) []byte {
		return marchallObj(t, echoapi.NavigateRequest{Destination: dest})
	}
	state := func(role string, s navigation.State) []byte {
		return marchallObj(t, echoapi.StateResponse{State: s, Destinations: navigation.Destinations(role)})
	}
	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	runHTTPTests(t, env, []httpTest{
		{
			name: "current state", path: "/v1/navigation", token: subToken, wantCode: http.StatusOK,
			wantData: state(user.RoleSubstitute, navigation.State{Kind: navigation.Dashboard, Destination: navigation.Agenda}),
		},
		{
			name: "staff to my group", method: http.MethodPost, path: "/v1/navigation", token: staffToken,
			body: navigate(navigation.MyGroup), wantCode: http.StatusOK,
			wantData: state(user.RoleStaff, navigation.State{Kind: navigation.Dashboard, Destination: navigation.MyGroup}),
		},
		{
			name: "staff to the team lead dashboard", method: http.MethodPost, path: "/v1/navigation", token: staffToken,
			body: navigate(navigation.FritidsledareDashboard), wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "substitute to my group", method: http.MethodPost, path: "/v1/navigation", token: subToken,
			body: navigate(navigation.MyGroup), wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "admin views dashboards", method: http.MethodPost, path: "/v1/navigation", token: adminToken,
			body: navigate(navigation.ParentDashboard), wantCode: http.StatusOK,
			wantData: state(user.RoleAdmin, navigation.State{Kind: navigation.Dashboard, Destination: navigation.ParentDashboard}),
		},
		{
			name: "destination required", method: http.MethodPost, path: "/v1/navigation", token: adminToken,
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"destination": "this field is required"}),
		},
		{
			name: "back to role selection", method: http.MethodPost, path: "/v1/navigation/role-selection", token: staffToken,
			wantCode: http.StatusOK, wantData: state(user.RoleStaff, navigation.State{Kind: navigation.RoleSelection}),
		},
		{
			name: "substitute has no role selection", method: http.MethodPost, path: "/v1/navigation/role-selection",
			token: subToken, wantCode: http.StatusForbidden, wantData: forbidden,
		},
	})
}

func Test_authApi_setDailyRole(t *testing.T) {
	env := setup(t)
	staff := env.createUser(t, "Enes", "enes@skolan.se", user.RoleStaff)
	sub := env.createUser(t, "Sam", "sam@skolan.se", user.RoleSubstitute)

	req, rec := newAuthRequest(http.MethodPut, "/v1/users/me/role", getToken(t, env.conf, staff), []byte(`{"role": "Fritidsledare"}`))
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echoapi.SessionResponse
	unmarshal(t, rec, &resp)
	assert.Equal(t, user.RoleTeamLead, resp.User.Role)
	assert.Equal(t, user.RoleTeamLead, resp.Session.Role)
	assert.Equal(t, navigation.State{Kind: navigation.RoleSelection}, resp.State)
	assert.Contains(t, resp.Destinations, navigation.FritidsledareDashboard)

	// the new token carries the new role
	req, rec = newAuthRequest(http.MethodPost, "/v1/navigation", resp.Token, marchallObj(t, echoapi.NavigateRequest{Destination: navigation.WhatsToday}))
	env.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	runHTTPTests(t, env, []httpTest{
		{
			name: "not a daily role", method: http.MethodPut, path: "/v1/users/me/role", token: resp.Token,
			body: []byte(`{"role": "admin"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "role must be one of fritidsledare or fritidspersonal"}),
		},
		{
			name: "substitute", method: http.MethodPut, path: "/v1/users/me/role", token: getToken(t, env.conf, sub),
			body: []byte(`{"role": "fritidsledare"}`), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	})
}
