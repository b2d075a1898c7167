package echoapi_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/planitkids/fritids/apps/api/echo"
	"github.com/planitkids/fritids/core/bus"
	"github.com/planitkids/fritids/core/user"
	emailsvc "github.com/planitkids/fritids/services/email"
)

type busFixture struct {
	env         testEnv
	driverToken string
	otherToken  string
	parentToken string
	bus         bus.Bus
	alva        bus.Student
	cleo        bus.Student
}

func setupBuses(t *testing.T) busFixture {
	env := setup(t)
	adminToken := getToken(t, env.conf, env.createUser(t, "Ada", "ada@skolan.se", user.RoleAdmin))
	driver := env.createUser(t, "Bo", "bo@skolan.se", user.RoleBusDriver)
	other := env.createUser(t, "Gun", "gun@skolan.se", user.RoleBusDriver)
	parent := env.createUser(t, "Pia", "pia@hem.se", user.RoleParent)

	post := func(path string, body interface{}, v interface{}) {
		req, rec := newAuthRequest(http.MethodPost, path, adminToken, marchallObj(t, body))
		env.do(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		unmarshal(t, rec, v)
	}

	f := busFixture{
		env:         env,
		driverToken: getToken(t, env.conf, driver),
		otherToken:  getToken(t, env.conf, other),
		parentToken: getToken(t, env.conf, parent),
	}
	post("/v1/buses", echoapi.NewBusRequest{Name: "Buss 1", DriverID: driver.ID}, &f.bus)
	var otherBus bus.Bus
	post("/v1/buses", echoapi.NewBusRequest{Name: "Buss 2", DriverID: other.ID}, &otherBus)
	studentsPath := fmt.Sprintf("/v1/buses/%d/students", f.bus.ID)
	post(studentsPath, echoapi.NewBusStudentRequest{Name: "Cleo", ClassName: "2B"}, &f.cleo)
	post(studentsPath, echoapi.NewBusStudentRequest{Name: "Alva", ClassName: "3A", ParentEmail: "Pia@hem.se"}, &f.alva)

	assert.Equal(t, "Buss 1", f.bus.Name)
	assert.Equal(t, school, f.bus.SchoolID)
	assert.Equal(t, "pia@hem.se", f.alva.ParentEmail)

	runHTTPTests(t, env, []httpTest{
		{
			name: "missing bus fields", method: http.MethodPost, path: "/v1/buses", token: adminToken,
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required", "driver_id": "this field is required"}),
		},
		{
			name: "invalid parent email", method: http.MethodPost, path: studentsPath, token: adminToken,
			body:     marchallObj(t, echoapi.NewBusStudentRequest{Name: "Dino", ParentEmail: "not-an-email"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown bus", method: http.MethodPost, path: "/v1/buses/999/students", token: adminToken,
			body:     marchallObj(t, echoapi.NewBusStudentRequest{Name: "Dino"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "bus of another school", method: http.MethodPost, path: studentsPath,
			token:    getToken(t, env.conf, env.createUserIn(t, "school-2", "Ola", "ola@annan.se", user.RoleAdmin)),
			body:     marchallObj(t, echoapi.NewBusStudentRequest{Name: "Dino"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "driver cannot add buses", method: http.MethodPost, path: "/v1/buses", token: getToken(t, env.conf, driver),
			body:     marchallObj(t, echoapi.NewBusRequest{Name: "Buss 3", DriverID: driver.ID}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	})
	return f
}

func Test_busApi_driver(t *testing.T) {
	f := setupBuses(t)
	env := f.env
	studentsPath := fmt.Sprintf("/v1/buses/%d/students", f.bus.ID)
	notifyPath := fmt.Sprintf("/v1/buses/%d/notifications", f.bus.ID)
	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	runHTTPTests(t, env, []httpTest{
		{name: "buses", path: "/v1/buses", token: f.driverToken, wantCode: http.StatusOK, wantData: marchallObj(t, []bus.Bus{f.bus})},
		{
			name: "students by name", path: studentsPath, token: f.driverToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, []bus.Student{f.alva, f.cleo}),
		},
		{name: "students of another bus", path: studentsPath, token: f.otherToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "parent", path: "/v1/buses", token: f.parentToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{
			name: "invalid status", method: http.MethodPost, path: notifyPath, token: f.driverToken,
			body:     marchallObj(t, bus.NewNotification{StudentID: f.alva.ID, Status: "lost"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": "status must be one of picked_up, arrived, departed or dropped_off"}),
		},
		{
			name: "not the driver", method: http.MethodPost, path: notifyPath, token: f.otherToken,
			body:     marchallObj(t, bus.NewNotification{StudentID: f.alva.ID, Status: bus.StatusPickedUp}),
			wantCode: http.StatusForbidden, wantData: forbidden,
		},
	})
	_, sent := emailsvc.LastSentMessage()
	assert.False(t, sent)

	req, rec := newAuthRequest(http.MethodPost, notifyPath, f.driverToken,
		marchallObj(t, bus.NewNotification{StudentID: f.alva.ID, Status: bus.StatusPickedUp}))
	env.do(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var n bus.Notification
	unmarshal(t, rec, &n)
	assert.Equal(t, f.alva.ID, n.StudentID)
	assert.Equal(t, f.bus.ID, n.BusID)
	assert.Equal(t, bus.StatusPickedUp, n.Status)

	msg, sent := emailsvc.LastSentMessage()
	require.True(t, sent)
	assert.Equal(t, "pia@hem.se", msg.To[0].Address)
	assert.Equal(t, "Alva has been picked up", msg.Subject)
	assert.Contains(t, msg.TextContent, "Alva: picked up (Buss 1, ")

	// no parent, no email
	emailsvc.ResetSentMessages()
	req, rec = newAuthRequest(http.MethodPost, notifyPath, f.driverToken,
		marchallObj(t, bus.NewNotification{StudentID: f.cleo.ID, Status: bus.StatusArrived}))
	env.do(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	_, sent = emailsvc.LastSentMessage()
	assert.False(t, sent)
}

func Test_busApi_parent(t *testing.T) {
	f := setupBuses(t)
	env := f.env

	children := func() []bus.StudentStatus {
		req, rec := newAuthRequest(http.MethodGet, "/v1/children", f.parentToken)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res []bus.StudentStatus
		unmarshal(t, rec, &res)
		return res
	}

	statuses := children()
	require.Len(t, statuses, 1)
	assert.Equal(t, f.alva, statuses[0].Student)
	assert.Nil(t, statuses[0].Latest)

	for _, s := range []bus.Status{bus.StatusPickedUp, bus.StatusArrived} {
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/buses/%d/notifications", f.bus.ID), f.driverToken,
			marchallObj(t, bus.NewNotification{StudentID: f.alva.ID, Status: s}))
		env.do(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	statuses = children()
	require.Len(t, statuses, 1)
	require.NotNil(t, statuses[0].Latest)
	assert.Equal(t, bus.StatusArrived, statuses[0].Latest.Status)

	req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/students/%d/status", f.alva.ID), f.parentToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var st bus.StudentStatus
	unmarshal(t, rec, &st)
	assert.Equal(t, f.alva.ID, st.Student.ID)
	assert.Equal(t, bus.StatusArrived, st.Latest.Status)

	notFound := marchallObj(t, httpErr{Error: "not found"})
	runHTTPTests(t, env, []httpTest{
		{
			name: "not my child", path: fmt.Sprintf("/v1/students/%d/status", f.cleo.ID), token: f.parentToken,
			wantCode: http.StatusNotFound, wantData: notFound,
		},
		{
			name: "driver", path: "/v1/children", token: f.driverToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	})
}
