package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/kazi/core/attendance"
	"github.com/trezcool/kazi/core/user"
	"github.com/trezcool/kazi/tests"
)

func mockNow(t *testing.T, now time.Time) {
	t.Helper()

	orig := attendance.NowFunc
	attendance.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { attendance.NowFunc = orig })
}

func Test_attendanceApi_checkInOut(t *testing.T) {
	app := setup(t)

	jane := testutil.CreateUser(t, app.usrRepo, "Jane", "janedoe", "jane@kazi.test", "", nil, true)
	token := getToken(t, jane)

	// Monday 08:15
	mockNow(t, time.Date(2021, 6, 7, 8, 15, 0, 0, time.UTC))

	t.Run("today before check-in", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/attendance/today", token)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		}, rec)
	})

	t.Run("check-in", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/attendance/check-in", token,
			marchallObj(t, attendance.CheckInput{Note: "hello"}))
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var recd attendance.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &recd); err != nil {
			t.Fatalf("unmarshalling Record failed: %v", err)
		}
		if recd.CheckInStatus != attendance.CheckInOnTime {
			t.Errorf("CheckInStatus = %v, want %v", recd.CheckInStatus, attendance.CheckInOnTime)
		}
	})

	t.Run("double check-in", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/attendance/check-in", token, marchallObj(t, attendance.CheckInput{}))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "already checked in today"}),
		}, rec)
	})

	// Monday 17:45
	mockNow(t, time.Date(2021, 6, 7, 17, 45, 0, 0, time.UTC))

	t.Run("check-out", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/attendance/check-out", token, marchallObj(t, attendance.CheckInput{}))
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var recd attendance.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &recd); err != nil {
			t.Fatalf("unmarshalling Record failed: %v", err)
		}
		if recd.CheckOutStatus != attendance.CheckOutNormal {
			t.Errorf("CheckOutStatus = %v, want %v", recd.CheckOutStatus, attendance.CheckOutNormal)
		}
		if recd.Status != attendance.StatusPresent {
			t.Errorf("Status = %v, want %v", recd.Status, attendance.StatusPresent)
		}
	})

	t.Run("double check-out", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/attendance/check-out", token, marchallObj(t, attendance.CheckInput{}))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "already checked out today"}),
		}, rec)
	})

	t.Run("check-out without check-in", func(t *testing.T) {
		bob := testutil.CreateUser(t, app.usrRepo, "Bob", "bobdoe", "bob@kazi.test", "", nil, true)
		req, rec := newAuthRequest(http.MethodPost, "/api/attendance/check-out", getToken(t, bob), marchallObj(t, attendance.CheckInput{}))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "not checked in today"}),
		}, rec)
	})
}

func Test_attendanceApi_query(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	jane := testutil.CreateUser(t, app.usrRepo, "Jane", "janedoe", "jane@kazi.test", "", nil, true)
	bob := testutil.CreateUser(t, app.usrRepo, "Bob", "bobdoe", "bob@kazi.test", "", nil, true)
	reviewer := testutil.CreateUser(t, app.usrRepo, "Mo", "modoe", "mo@kazi.test", "", []string{user.RoleLevel3}, true)

	day := time.Date(2021, 6, 7, 0, 0, 0, 0, time.UTC)
	janeRec, err := app.attSvc.MarkDay(ctx, jane.ID, day, attendance.StatusLeave, 0)
	if err != nil {
		t.Fatalf("MarkDay() failed: %v", err)
	}
	bobRec, err := app.attSvc.MarkDay(ctx, bob.ID, day, attendance.StatusWFH, attendance.RequiredDailyHours)
	if err != nil {
		t.Fatalf("MarkDay() failed: %v", err)
	}

	tests := []httpTest{
		{name: "auth required", path: "/api/attendance", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "own records only", path: "/api/attendance", token: getToken(t, jane),
			wantCode: http.StatusOK, wantData: marchallList(t, janeRec),
		},
		{
			name: "read-all needs a reviewer role", path: "/api/attendance/all?user_id=" + bob.ID, token: getToken(t, jane),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "reviewer reads anyone", path: "/api/attendance/all?user_id=" + bob.ID, token: getToken(t, reviewer),
			wantCode: http.StatusOK, wantData: marchallList(t, bobRec),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
