package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/kazi/core/directory"
	"github.com/trezcool/kazi/core/user"
	"github.com/trezcool/kazi/tests"
)

func Test_directoryApi_adminOnly(t *testing.T) {
	app := setup(t)

	jane := testutil.CreateUser(t, app.usrRepo, "Jane", "janedoe", "jane@kazi.test", "", nil, true)
	reviewer := testutil.CreateUser(t, app.usrRepo, "Mo", "modoe", "mo@kazi.test", "", []string{user.RoleLevel2}, true)

	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	tests := []httpTest{
		{name: "auth required", path: "/api/directory/groups", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "plain user", path: "/api/directory/groups", token: getToken(t, jane), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "reviewer", path: "/api/directory/device-types", token: getToken(t, reviewer), wantCode: http.StatusForbidden, wantData: forbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_directoryApi_groupCRUD(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "theadmin", "admin@kazi.test", "", []string{user.RoleAdmin}, true)
	token := getToken(t, admin)

	var grp directory.Group

	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/directory/groups", token,
			marchallObj(t, directory.GroupInput{Name: "Engineering", Description: "builds things"}))
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &grp); err != nil {
			t.Fatalf("unmarshalling Group failed: %v", err)
		}
		if grp.ID == "" || grp.Name != "Engineering" {
			t.Errorf("created group = %+v", grp)
		}
	})

	t.Run("create requires a name", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/directory/groups", token, marchallObj(t, directory.GroupInput{}))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		}, rec)
	})

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/directory/groups/"+grp.ID, token)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, grp)}, rec)
	})

	t.Run("update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/api/directory/groups/"+grp.ID, token,
			marchallObj(t, directory.GroupInput{Name: "Platform"}))
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var updated directory.Group
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling Group failed: %v", err)
		}
		if updated.Name != "Platform" {
			t.Errorf("Name = %v, want Platform", updated.Name)
		}
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/directory/groups/"+grp.ID, token)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}

		req, rec = newAuthRequest(http.MethodGet, "/api/directory/groups/"+grp.ID, token)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		}, rec)
	})
}

func Test_directoryApi_deviceTypeValidation(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "theadmin", "admin@kazi.test", "", []string{user.RoleAdmin}, true)
	token := getToken(t, admin)

	tests := []httpTest{
		{
			name: "invalid code characters", body: marchallObj(t, directory.DeviceTypeInput{Name: "Kiosk", Code: "kiosk#1"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "only alphanumeric characters and underscores are allowed"}),
		},
		{
			name: "code too short", body: marchallObj(t, directory.DeviceTypeInput{Name: "Kiosk", Code: "k1"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "code must be at least 4 characters in length"}),
		},
		{
			name: "create", body: marchallObj(t, directory.DeviceTypeInput{Name: "Kiosk", Code: "kiosk_01"}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/directory/device-types", token, tt.body)
			app.server.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var dt directory.DeviceType
				if err := json.Unmarshal(rec.Body.Bytes(), &dt); err != nil {
					t.Fatalf("unmarshalling DeviceType failed: %v", err)
				}
				if dt.Code != "kiosk_01" {
					t.Errorf("Code = %v, want kiosk_01", dt.Code)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
