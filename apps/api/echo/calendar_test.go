package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/planitkids/fritids/apps/api/echo"
	"github.com/planitkids/fritids/core/calendar"
	"github.com/planitkids/fritids/core/user"
)

func createOccasion(t *testing.T, env testEnv, token string, no calendar.NewOccasion) calendar.Occasion {
	req, rec := newAuthRequest(http.MethodPost, "/v1/occasions", token, marchallObj(t, no))
	env.do(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var occ calendar.Occasion
	unmarshal(t, rec, &occ)
	return occ
}

func Test_calendarApi_week(t *testing.T) {
	env := setup(t)
	lead := env.createUser(t, "Anna", "anna@skolan.se", user.RoleTeamLead)
	token := getToken(t, env.conf, lead)

	createOccasion(t, env, token, calendar.NewOccasion{Date: "2023-09-05", Title: "Utflykt", Description: "Skogen"})
	createOccasion(t, env, token, calendar.NewOccasion{Date: "2023-09-05", Title: "Fika", Description: "Bullar"})
	createOccasion(t, env, token, calendar.NewOccasion{Date: "2023-09-10", Title: "Loppis", Description: "Skolgården"})
	createOccasion(t, env, token, calendar.NewOccasion{Date: "2023-09-11", Title: "Teater", Description: "Aulan"})

	week := func(query string) echoapi.WeekResponse {
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/week"+query, token)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp echoapi.WeekResponse
		unmarshal(t, rec, &resp)
		return resp
	}

	resp := week("?date=2023-09-06&selected=2023-09-06")
	assert.Equal(t, 36, resp.WeekNumber)
	require.Len(t, resp.Days, 7)
	assert.Equal(t, calendar.Day{
		Date: "2023-09-04", Weekday: "Måndag", DayOfMonth: 4, Month: "september",
	}, resp.Days[0])
	assert.Equal(t, "2023-09-10", resp.Days[6].Date)
	assert.Equal(t, "Söndag", resp.Days[6].Weekday)
	assert.True(t, resp.Days[2].IsSelected)
	assert.Equal(t, []string{"2023-09-05", "2023-09-10"}, resp.MarkedDates)

	resp = week("?date=2023-09-06&shift=1")
	assert.Equal(t, 37, resp.WeekNumber)
	assert.Equal(t, "2023-09-11", resp.Days[0].Date)
	assert.Equal(t, []string{"2023-09-11"}, resp.MarkedDates)

	resp = week("?date=2023-09-06&shift=-2")
	assert.Equal(t, 34, resp.WeekNumber)
	assert.Empty(t, resp.MarkedDates)

	resp = week("?date=2023-09-06&shift=520")
	assert.Equal(t, time.Date(2023, 9, 4, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*520).Format("2006-01-02"), resp.Days[0].Date)

	// the selected day moves the window when outside of it
	resp = week("?selected=2024-01-01")
	assert.Equal(t, 1, resp.WeekNumber)
	assert.Equal(t, "2024-01-01", resp.Days[0].Date)
	assert.True(t, resp.Days[0].IsSelected)

	runHTTPTests(t, env, []httpTest{
		{
			name: "invalid date", path: "/v1/calendar/week?date=2023-13-01", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": "date must be formatted as YYYY-MM-DD"}),
		},
		{
			name: "invalid shift", path: "/v1/calendar/week?shift=next", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"shift": "shift must be an integer"}),
		},
		{
			name: "shift too far ahead", path: "/v1/calendar/week?date=2023-09-04&shift=200000000", token: token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"shift": "shift must be between -520 and 520"}),
		},
		{
			name: "shift too far back", path: "/v1/calendar/week?shift=-521", token: token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"shift": "shift must be between -520 and 520"}),
		},
	})
}

func Test_calendarApi_occasions(t *testing.T) {
	env := setup(t)
	lead := env.createUser(t, "Anna", "anna@skolan.se", user.RoleTeamLead)
	staff := env.createUser(t, "Enes", "enes@skolan.se", user.RoleStaff)
	sub := env.createUser(t, "Sam", "sam@skolan.se", user.RoleSubstitute)
	driver := env.createUser(t, "Bo", "bo@skolan.se", user.RoleBusDriver)
	token := getToken(t, env.conf, lead)

	occ := createOccasion(t, env, token, calendar.NewOccasion{
		Date: "2023-09-05", Title: " Utflykt ", Description: "Skogen", Images: []string{"https://img/1.png"},
	})
	assert.NotEmpty(t, occ.ID)
	assert.Equal(t, "Utflykt", occ.Title)
	assert.Equal(t, school, occ.SchoolID)
	assert.Equal(t, lead.ID, occ.CreatedBy)
	other := createOccasion(t, env, token, calendar.NewOccasion{Date: "2023-09-20", Title: "Loppis", Description: "Skolgården"})
	assert.Equal(t, []string{}, other.Images)

	forbidden := marchallObj(t, httpErr{Error: "permission denied"})
	newOcc := marchallObj(t, calendar.NewOccasion{Date: "2023-09-05", Title: "Fika", Description: "Bullar"})

	runHTTPTests(t, env, []httpTest{
		{
			name: "day", path: "/v1/occasions?date=2023-09-05", token: getToken(t, env.conf, sub),
			wantCode: http.StatusOK, wantData: marchallObj(t, []calendar.Occasion{occ}),
		},
		{
			name: "month", path: "/v1/occasions?month=2023-09", token: getToken(t, env.conf, staff),
			wantCode: http.StatusOK, wantData: marchallObj(t, []calendar.Occasion{occ, other}),
		},
		{
			name: "empty day", path: "/v1/occasions?date=2023-09-06", token: token,
			wantCode: http.StatusOK, wantData: []byte(`[]`),
		},
		{
			name: "invalid month", path: "/v1/occasions?month=sept", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"month": "month must be formatted as YYYY-MM"}),
		},
		{name: "bus driver", path: "/v1/occasions", token: getToken(t, env.conf, driver), wantCode: http.StatusForbidden, wantData: forbidden},
		{
			name: "staff cannot create", method: http.MethodPost, path: "/v1/occasions", token: getToken(t, env.conf, staff),
			body: newOcc, wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/occasions", token: token,
			body: []byte(`{"title": "  "}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"date":        "this field is required",
				"title":       "this field is required",
				"description": "this field is required",
			}),
		},
		{
			name: "staff cannot delete", method: http.MethodDelete, path: "/v1/occasions/" + occ.ID,
			token: getToken(t, env.conf, staff), wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/occasions/" + occ.ID, token: token, wantCode: http.StatusNoContent},
		{
			name: "delete again", method: http.MethodDelete, path: "/v1/occasions/" + occ.ID, token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "day after delete", path: "/v1/occasions?date=2023-09-05", token: token,
			wantCode: http.StatusOK, wantData: []byte(`[]`),
		},
	})
}
