package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/kazi/core/request"
	"github.com/trezcool/kazi/core/user"
	"github.com/trezcool/kazi/tests"
)

func createRequest(t *testing.T, svc request.Service, owner user.User, typ request.Type) request.Request {
	t.Helper()

	req, err := svc.Create(context.Background(), owner, request.NewRequest{
		Type:      string(typ),
		StartTime: time.Date(2021, 6, 9, 8, 30, 0, 0, time.UTC),
		EndTime:   time.Date(2021, 6, 9, 17, 30, 0, 0, time.UTC),
		Reason:    "reasons",
	})
	if err != nil {
		t.Fatalf("createRequest() failed: %v", err)
	}
	return req
}

func Test_requestApi_create(t *testing.T) {
	app := setup(t)

	jane := testutil.CreateUser(t, app.usrRepo, "Jane", "janedoe", "jane@kazi.test", "", nil, true)
	token := getToken(t, jane)

	body := marchallObj(t, request.NewRequest{
		Type:      string(request.TypeWFH),
		StartTime: time.Date(2021, 6, 9, 8, 30, 0, 0, time.UTC),
		EndTime:   time.Date(2021, 6, 9, 17, 30, 0, 0, time.UTC),
		Reason:    "plumber day",
	})

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/requests", body)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		}, rec)
	})

	t.Run("missing fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/requests", token, marchallObj(t, request.NewRequest{}))
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/requests", token, body)
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var created request.Request
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("unmarshalling Request failed: %v", err)
		}
		if created.Status != request.StatusPending {
			t.Errorf("Status = %v, want %v", created.Status, request.StatusPending)
		}
		if created.UserID != jane.ID {
			t.Errorf("UserID = %v, want %v", created.UserID, jane.ID)
		}
	})

	t.Run("open overlap", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/requests", token, body)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "an open request already covers this time range"}),
		}, rec)
	})
}

func Test_requestApi_decisions(t *testing.T) {
	app := setup(t)

	jane := testutil.CreateUser(t, app.usrRepo, "Jane", "janedoe", "jane@kazi.test", "", nil, true)
	lvl2 := testutil.CreateUser(t, app.usrRepo, "Rev", "revdoe", "rev@kazi.test", "", []string{user.RoleLevel2}, true)
	lvl1 := testutil.CreateUser(t, app.usrRepo, "App", "appdoe", "app@kazi.test", "", []string{user.RoleLevel1}, true)

	req := createRequest(t, app.reqSvc, jane, request.TypeWFH)

	decide := func(t *testing.T, id, action, token string, want httpTest) {
		t.Helper()
		r, rec := newAuthRequest(http.MethodPost, "/api/requests/"+id+"/"+action, token, marchallObj(t, request.Decision{}))
		app.server.ServeHTTP(rec, r)
		if want.wantData == nil {
			if rec.Code != want.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body %v", rec.Code, want.wantCode, rec.Body.String())
			}
			return
		}
		checkCodeAndData(t, want, rec)
	}

	forbidden := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}

	// plain users hold no decision permissions
	decide(t, req.ID, "confirm", getToken(t, jane), forbidden)
	decide(t, req.ID, "approve", getToken(t, jane), forbidden)
	decide(t, req.ID, "reject", getToken(t, jane), forbidden)

	// reviewers confirm but do not approve
	decide(t, req.ID, "approve", getToken(t, lvl2), forbidden)
	decide(t, req.ID, "confirm", getToken(t, lvl2), httpTest{wantCode: http.StatusOK})

	// confirming twice loses against the stored status
	decide(t, req.ID, "confirm", getToken(t, lvl2), httpTest{
		wantCode: http.StatusConflict,
		wantData: marchallObj(t, httpErr{Error: "request was modified concurrently"}),
	})

	// approvers close the workflow
	decide(t, req.ID, "approve", getToken(t, lvl1), httpTest{wantCode: http.StatusOK})
	decide(t, req.ID, "reject", getToken(t, lvl1), httpTest{
		wantCode: http.StatusConflict,
		wantData: marchallObj(t, httpErr{Error: "request already finalized"}),
	})

	decide(t, "nope", "confirm", getToken(t, lvl2), httpTest{
		wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
	})
}

func Test_requestApi_cancel(t *testing.T) {
	app := setup(t)

	jane := testutil.CreateUser(t, app.usrRepo, "Jane", "janedoe", "jane@kazi.test", "", nil, true)
	bob := testutil.CreateUser(t, app.usrRepo, "Bob", "bobdoe", "bob@kazi.test", "", nil, true)

	req := createRequest(t, app.reqSvc, jane, request.TypeLeave)

	t.Run("owner only", func(t *testing.T) {
		r, rec := newAuthRequest(http.MethodPost, "/api/requests/"+req.ID+"/cancel", getToken(t, bob), marchallObj(t, request.Decision{}))
		app.server.ServeHTTP(rec, r)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		}, rec)
	})

	t.Run("cancel", func(t *testing.T) {
		r, rec := newAuthRequest(http.MethodPost, "/api/requests/"+req.ID+"/cancel", getToken(t, jane),
			marchallObj(t, request.Decision{Comment: "changed plans"}))
		app.server.ServeHTTP(rec, r)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var cancelled request.Request
		if err := json.Unmarshal(rec.Body.Bytes(), &cancelled); err != nil {
			t.Fatalf("unmarshalling Request failed: %v", err)
		}
		if cancelled.Status != request.StatusCancelled {
			t.Errorf("Status = %v, want %v", cancelled.Status, request.StatusCancelled)
		}
	})
}

func Test_requestApi_retrieve(t *testing.T) {
	app := setup(t)

	jane := testutil.CreateUser(t, app.usrRepo, "Jane", "janedoe", "jane@kazi.test", "", nil, true)
	bob := testutil.CreateUser(t, app.usrRepo, "Bob", "bobdoe", "bob@kazi.test", "", nil, true)
	reviewer := testutil.CreateUser(t, app.usrRepo, "Mo", "modoe", "mo@kazi.test", "", []string{user.RoleLevel3}, true)

	req := createRequest(t, app.reqSvc, jane, request.TypeOvertime)

	tests := []httpTest{
		{
			name: "owner", path: "/api/requests/" + req.ID, token: getToken(t, jane),
			wantCode: http.StatusOK, wantData: marchallObj(t, req),
		},
		{
			name: "other users see nothing", path: "/api/requests/" + req.ID, token: getToken(t, bob),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "reviewer sees all", path: "/api/requests/" + req.ID, token: getToken(t, reviewer),
			wantCode: http.StatusOK, wantData: marchallObj(t, req),
		},
		{
			name: "own list", path: "/api/requests", token: getToken(t, jane),
			wantCode: http.StatusOK, wantData: marchallList(t, req),
		},
		{
			name: "empty list", path: "/api/requests", token: getToken(t, bob),
			wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.server.ServeHTTP(rec, r)
			checkCodeAndData(t, tt, rec)
		})
	}
}
