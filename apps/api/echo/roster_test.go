package echoapi_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/planitkids/fritids/core/roster"
	"github.com/planitkids/fritids/core/user"
)

func Test_rosterApi_import(t *testing.T) {
	env := setup(t)
	token := getToken(t, env.conf, env.createUser(t, "Ada", "ada@skolan.se", user.RoleAdmin))
	staffToken := getToken(t, env.conf, env.createUser(t, "Enes", "enes@skolan.se", user.RoleStaff))

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "1A"))
	_, err := f.NewSheet("2B")
	require.NoError(t, err)
	for sheet, names := range map[string][]string{"1A": {"Namn", "Alva", "Bill"}, "2B": {"Namn", "Dino"}} {
		for i, name := range names {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, name))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	post := func(token string, data []byte) (int, string) {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		if data != nil {
			fw, err := w.CreateFormFile("file", "klasser.xlsx")
			require.NoError(t, err)
			_, err = fw.Write(data)
			require.NoError(t, err)
		}
		require.NoError(t, w.Close())
		req, rec := newAuthRequest(http.MethodPost, "/v1/rosters/import", token, body.Bytes())
		req.Header.Set("Content-Type", w.FormDataContentType())
		env.do(req, rec)
		return rec.Code, rec.Body.String()
	}

	code, body := post(token, buf.Bytes())
	require.Equal(t, http.StatusOK, code, body)
	assert.JSONEq(t, `{"1A": 2, "2B": 1}`, body)

	classes, err := env.deps.RosterSvc.ClassRosters(ctxBg, school)
	require.NoError(t, err)
	assert.Equal(t, roster.ClassRoster{"1A": {"Alva", "Bill"}, "2B": {"Dino"}}, classes)

	code, body = post(token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"file": "this field is required"}`, body)

	code, body = post(token, []byte("not a workbook"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"file": "the file is not a valid workbook"}`, body)

	code, _ = post(staffToken, buf.Bytes())
	assert.Equal(t, http.StatusForbidden, code)

	runHTTPTests(t, env, []httpTest{
		{
			name: "rosters", path: "/v1/rosters", token: token, wantCode: http.StatusOK,
			wantData: marchallObj(t, roster.ClassRoster{"1A": {"Alva", "Bill"}, "2B": {"Dino"}}),
		},
		{
			name: "staff", path: "/v1/rosters", token: staffToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	})
}
