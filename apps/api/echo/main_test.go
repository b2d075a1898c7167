package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/planitkids/fritids/apps/api/echo"
	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/activity"
	"github.com/planitkids/fritids/core/bus"
	"github.com/planitkids/fritids/core/calendar"
	"github.com/planitkids/fritids/core/roster"
	"github.com/planitkids/fritids/core/user"
	emailsvc "github.com/planitkids/fritids/services/email"
	mediasvc "github.com/planitkids/fritids/services/media"
	"github.com/planitkids/fritids/services/tokenstore"
	inmemdb "github.com/planitkids/fritids/storage/database/inmem"
	"github.com/planitkids/fritids/testutil"
)

const (
	school = "school-1"
	pwd    = "Pa$$w0rd"
)

var (
	ctxBg           = context.Background()
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

type testEnv struct {
	conf    *core.Config
	app     *echoapi.Server
	deps    *echoapi.Deps
	usrRepo user.Repository
}

func setup(t *testing.T) testEnv {
	conf := testutil.Config()
	conf.Media.Dir = t.TempDir()
	conf.Media.BaseURL = "http://localhost:8000/media"
	conf.Media.MaxPhotoWidth = 100

	logger := testutil.Logger(conf)
	testutil.ParseEmailTemplates(conf, logger)
	emailsvc.ResetSentMessages()
	validate, translator := testutil.Validator()

	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	deps := &echoapi.Deps{
		UserSvc:     user.NewService(usrRepo),
		RosterSvc:   roster.NewService(inmemdb.NewRosterRepository(db)),
		OccasionSvc: calendar.NewOccasionService(inmemdb.NewOccasionRepository(db)),
		ActivitySvc: activity.NewService(inmemdb.NewActivityRepository(db), validate),
		BusSvc:      bus.NewService(inmemdb.NewBusRepository(db), emailsvc.NewConsoleServiceMock(conf, logger), validate),
		Tokens:      tokenstore.NewMemoryStore(),
		Media:       mediasvc.NewLocalStore(conf),
		Validate:    validate,
		Translator:  translator,
	}
	return testEnv{
		conf:    conf,
		app:     echoapi.NewServer(conf, logger, deps),
		deps:    deps,
		usrRepo: usrRepo,
	}
}

func (env testEnv) createUser(t *testing.T, name, email, role string) user.User {
	return testutil.CreateUser(t, env.usrRepo, name, email, pwd, role, school, true)
}

func (env testEnv) createUserIn(t *testing.T, schoolID, name, email, role string) user.User {
	return testutil.CreateUser(t, env.usrRepo, name, email, pwd, role, schoolID, true)
}

func (env testEnv) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	env.app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := echoapi.GenerateToken(conf, echoapi.NewClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, env testEnv, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, env.do(req, rec))
		})
	}
}
