package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/planitkids/fritids/core/user"
)

func Test_newLogEntry(t *testing.T) {
	errBoom := errors.New("boom")
	enes := user.User{ID: "u1", Name: "Enes", Email: "enes@skolan.se", Role: user.RoleStaff, SchoolID: "school-1"}
	anna := user.User{ID: "u2", Name: "Anna"}

	tests := []struct {
		name       string
		args       []interface{}
		wantUsrID  string
		wantErr    error
		wantExtras map[string]interface{}
		wantOthers int
	}{
		{name: "message only"},
		{name: "error", args: []interface{}{errBoom}, wantErr: errBoom},
		{
			name:       "first user wins and adds role and school",
			args:       []interface{}{enes, anna},
			wantUsrID:  "u1",
			wantExtras: map[string]interface{}{"role": user.RoleStaff, "school_id": "school-1"},
		},
		{
			name:       "extras merged",
			args:       []interface{}{map[string]interface{}{"a": 1}, map[string]interface{}{"b": 2}, errBoom},
			wantErr:    errBoom,
			wantExtras: map[string]interface{}{"a": 1, "b": 2},
		},
		{name: "others kept", args: []interface{}{errBoom, errors.New("second"), 42}, wantErr: errBoom, wantOthers: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newLogEntry("msg", tt.args)
			assert.Equal(t, "msg", e.msg)
			if tt.wantUsrID == "" {
				assert.Nil(t, e.usr)
			} else if assert.NotNil(t, e.usr) {
				assert.Equal(t, tt.wantUsrID, e.usr.ID)
			}
			assert.Equal(t, tt.wantErr, e.err)
			assert.Equal(t, tt.wantExtras, e.extras)
			assert.Len(t, e.others, tt.wantOthers)
		})
	}
}
