package request_test

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/attendance"
	"github.com/trezcool/kazi/core/request"
	"github.com/trezcool/kazi/core/user"
	emailsvc "github.com/trezcool/kazi/services/email"
	"github.com/trezcool/kazi/storage/database/dummy"
	"github.com/trezcool/kazi/tests"
)

type testEnv struct {
	svc     request.Service
	usrRepo user.Repository
	attSvc  attendance.Service
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	attSvc := attendance.NewService(dummydb.NewAttendanceRepository(db), attendance.NewCalendar(nil))
	svc := request.NewService(dummydb.NewRequestRepository(db), usrRepo, attSvc, emailsvc.NewConsoleServiceMock())

	emailsvc.SentMessages = nil
	return testEnv{svc: svc, usrRepo: usrRepo, attSvc: attSvc}
}

func newLeaveRequest(start, end time.Time, days float64) request.NewRequest {
	return request.NewRequest{
		Type:      string(request.TypeLeave),
		StartTime: start,
		EndTime:   end,
		Reason:    "family",
		LeaveDays: days,
	}
}

func creditLeave(t *testing.T, repo user.Repository, usr user.User, days float64) {
	t.Helper()
	if err := repo.CreditLeaveDays(context.Background(), usr.ID, days); err != nil {
		t.Fatalf("CreditLeaveDays() failed: %v", err)
	}
}

var (
	// Wednesday through Thursday
	reqStart = time.Date(2021, 6, 9, 0, 0, 0, 0, time.UTC)
	reqEnd   = time.Date(2021, 6, 10, 23, 59, 0, 0, time.UTC)
)

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.usrRepo, "Jane", "jane", "jane@kazi.test", "", nil, true)

	req, err := env.svc.Create(ctx, owner, newLeaveRequest(reqStart, reqEnd, 2))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if req.Status != request.StatusPending {
		t.Errorf("Status = %v, want %v", req.Status, request.StatusPending)
	}
	if req.ID == "" {
		t.Error("Create() did not assign an ID")
	}

	// same type, overlapping range
	if _, err = env.svc.Create(ctx, owner, newLeaveRequest(reqStart.AddDate(0, 0, 1), reqEnd.AddDate(0, 0, 2), 2)); err != request.ErrOverlapPending {
		t.Errorf("overlapping Create() err = %v, want %v", err, request.ErrOverlapPending)
	}

	// different type over the same range is fine
	wfh := request.NewRequest{Type: string(request.TypeWFH), StartTime: reqStart, EndTime: reqEnd, Reason: "remote"}
	if _, err = env.svc.Create(ctx, owner, wfh); err != nil {
		t.Errorf("Create() of different type failed: %v", err)
	}

	// same type, disjoint range is fine
	if _, err = env.svc.Create(ctx, owner, newLeaveRequest(reqStart.AddDate(0, 1, 0), reqEnd.AddDate(0, 1, 0), 2)); err != nil {
		t.Errorf("Create() of disjoint range failed: %v", err)
	}
}

func TestService_Confirm(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.usrRepo, "Jane", "jane", "jane@kazi.test", "", nil, true)
	manager := testutil.CreateUser(t, env.usrRepo, "Mo", "mo", "mo@kazi.test", "", []string{user.RoleLevel2}, true)

	req, err := env.svc.Create(ctx, owner, newLeaveRequest(reqStart, reqEnd, 2))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	req, err = env.svc.Confirm(ctx, manager, req.ID, request.Decision{Comment: "looks fine"})
	if err != nil {
		t.Fatalf("Confirm() failed: %v", err)
	}
	if req.Status != request.StatusConfirmed {
		t.Errorf("Status = %v, want %v", req.Status, request.StatusConfirmed)
	}
	if req.ConfirmedBy == nil || req.ConfirmedBy.Actor != manager.ID || req.ConfirmedBy.Comment != "looks fine" {
		t.Errorf("ConfirmedBy = %+v, want actor %v", req.ConfirmedBy, manager.ID)
	}

	// confirming twice loses the conditional update
	if _, err = env.svc.Confirm(ctx, manager, req.ID, request.Decision{}); err != request.ErrStatusChanged {
		t.Errorf("second Confirm() err = %v, want %v", err, request.ErrStatusChanged)
	}

	if _, err = env.svc.Confirm(ctx, manager, "nope", request.Decision{}); err != request.ErrNotFound {
		t.Errorf("Confirm() of unknown id err = %v, want %v", err, request.ErrNotFound)
	}
}

func TestService_ApproveLeave(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.usrRepo, "Jane", "jane", "jane@kazi.test", "", nil, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Root", "root", "root@kazi.test", "", []string{user.RoleAdmin}, true)
	creditLeave(t, env.usrRepo, owner, 3)

	req, err := env.svc.Create(ctx, owner, newLeaveRequest(reqStart, reqEnd, 2))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	req, err = env.svc.Approve(ctx, admin, req.ID, request.Decision{})
	if err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	if req.Status != request.StatusApproved {
		t.Errorf("Status = %v, want %v", req.Status, request.StatusApproved)
	}
	if req.ApprovedBy == nil || req.ApprovedBy.Actor != admin.ID {
		t.Errorf("ApprovedBy = %+v, want actor %v", req.ApprovedBy, admin.ID)
	}

	// balance debited
	owner, err = env.usrRepo.GetUser(ctx, user.GetFilter{ID: owner.ID})
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}
	if want := 1.0; owner.LeaveDays != want {
		t.Errorf("LeaveDays = %v, want %v", owner.LeaveDays, want)
	}

	// covered workdays marked as leave
	recs, err := env.attSvc.Query(ctx, &attendance.QueryFilter{UserID: owner.ID}, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d attendance records, want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.Status != attendance.StatusLeave {
			t.Errorf("record %s status = %v, want %v", rec.Date, rec.Status, attendance.StatusLeave)
		}
	}

	// owner notified
	if len(emailsvc.SentMessages) != 1 {
		t.Errorf("got %d sent emails, want 1", len(emailsvc.SentMessages))
	}

	// a decided request is closed for good
	if _, err = env.svc.Approve(ctx, admin, req.ID, request.Decision{}); err != request.ErrRequestClosed {
		t.Errorf("second Approve() err = %v, want %v", err, request.ErrRequestClosed)
	}
}

func TestService_ApproveLeave_insufficientBalance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.usrRepo, "Jane", "jane", "jane@kazi.test", "", nil, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Root", "root", "root@kazi.test", "", []string{user.RoleAdmin}, true)
	creditLeave(t, env.usrRepo, owner, 1)

	req, err := env.svc.Create(ctx, owner, newLeaveRequest(reqStart, reqEnd, 2))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	_, err = env.svc.Approve(ctx, admin, req.ID, request.Decision{})
	if _, ok := err.(*core.ValidationError); !ok {
		t.Fatalf("Approve() err = %v, want a validation error", err)
	}

	// request and balance untouched
	req, err = env.svc.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if req.Status != request.StatusPending {
		t.Errorf("Status = %v, want %v", req.Status, request.StatusPending)
	}
	owner, _ = env.usrRepo.GetUser(ctx, user.GetFilter{ID: owner.ID})
	if want := 1.0; owner.LeaveDays != want {
		t.Errorf("LeaveDays = %v, want %v", owner.LeaveDays, want)
	}
}

func TestService_ApproveWFH_skipsWeekends(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.usrRepo, "Jane", "jane", "jane@kazi.test", "", nil, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Root", "root", "root@kazi.test", "", []string{user.RoleAdmin}, true)

	// Friday through Monday
	nr := request.NewRequest{
		Type:      string(request.TypeWFH),
		StartTime: time.Date(2021, 6, 11, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2021, 6, 14, 23, 59, 0, 0, time.UTC),
		Reason:    "remote",
	}
	req, err := env.svc.Create(ctx, owner, nr)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err = env.svc.Approve(ctx, admin, req.ID, request.Decision{}); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}

	recs, err := env.attSvc.Query(ctx, &attendance.QueryFilter{UserID: owner.ID}, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d attendance records, want 2 (weekend skipped)", len(recs))
	}
	for _, rec := range recs {
		if rec.Status != attendance.StatusWFH {
			t.Errorf("record %s status = %v, want %v", rec.Date, rec.Status, attendance.StatusWFH)
		}
		if rec.TotalHours != attendance.RequiredDailyHours {
			t.Errorf("record %s hours = %v, want %v", rec.Date, rec.TotalHours, attendance.RequiredDailyHours)
		}
	}
}

func TestService_ApproveWorkTime_amendsRecord(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.usrRepo, "Jane", "jane", "jane@kazi.test", "", nil, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Root", "root", "root@kazi.test", "", []string{user.RoleAdmin}, true)

	nr := request.NewRequest{
		Type:      string(request.TypeWorkTime),
		StartTime: time.Date(2021, 6, 9, 8, 30, 0, 0, time.UTC),
		EndTime:   time.Date(2021, 6, 9, 17, 30, 0, 0, time.UTC),
		Reason:    "forgot to check out",
	}
	req, err := env.svc.Create(ctx, owner, nr)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err = env.svc.Approve(ctx, admin, req.ID, request.Decision{}); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}

	rec, err := env.attSvc.Query(ctx, &attendance.QueryFilter{UserID: owner.ID}, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(rec) != 1 {
		t.Fatalf("got %d attendance records, want 1", len(rec))
	}
	if rec[0].Status != attendance.StatusPresent {
		t.Errorf("Status = %v, want %v", rec[0].Status, attendance.StatusPresent)
	}
	if want := 8.0; rec[0].TotalHours != want {
		t.Errorf("TotalHours = %v, want %v", rec[0].TotalHours, want)
	}
}

func TestService_Reject(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.usrRepo, "Jane", "jane", "jane@kazi.test", "", nil, true)
	manager := testutil.CreateUser(t, env.usrRepo, "Mo", "mo", "mo@kazi.test", "", []string{user.RoleLevel1}, true)

	req, err := env.svc.Create(ctx, owner, newLeaveRequest(reqStart, reqEnd, 2))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	req, err = env.svc.Reject(ctx, manager, req.ID, request.Decision{Comment: "busy week"})
	if err != nil {
		t.Fatalf("Reject() failed: %v", err)
	}
	if req.Status != request.StatusRejected {
		t.Errorf("Status = %v, want %v", req.Status, request.StatusRejected)
	}
	if req.RejectedBy == nil || req.RejectedBy.Comment != "busy week" {
		t.Errorf("RejectedBy = %+v", req.RejectedBy)
	}

	// no attendance side effects, no balance debit
	recs, _ := env.attSvc.Query(ctx, &attendance.QueryFilter{UserID: owner.ID}, nil)
	if len(recs) != 0 {
		t.Errorf("got %d attendance records, want 0", len(recs))
	}
	if len(emailsvc.SentMessages) != 1 {
		t.Errorf("got %d sent emails, want 1", len(emailsvc.SentMessages))
	}
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.usrRepo, "Jane", "jane", "jane@kazi.test", "", nil, true)
	other := testutil.CreateUser(t, env.usrRepo, "Bob", "bob", "bob@kazi.test", "", nil, true)

	req, err := env.svc.Create(ctx, owner, newLeaveRequest(reqStart, reqEnd, 2))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if _, err = env.svc.Cancel(ctx, other, req.ID, request.Decision{}); err != request.ErrNotOwner {
		t.Errorf("Cancel() by non-owner err = %v, want %v", err, request.ErrNotOwner)
	}

	req, err = env.svc.Cancel(ctx, owner, req.ID, request.Decision{Comment: "changed my mind"})
	if err != nil {
		t.Fatalf("Cancel() failed: %v", err)
	}
	if req.Status != request.StatusCancelled {
		t.Errorf("Status = %v, want %v", req.Status, request.StatusCancelled)
	}
	if req.CancelledBy == nil || req.CancelledBy.Actor != owner.ID {
		t.Errorf("CancelledBy = %+v, want actor %v", req.CancelledBy, owner.ID)
	}
}

func TestService_AccrueMonthlyLeave(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	jane := testutil.CreateUser(t, env.usrRepo, "Jane", "jane", "jane@kazi.test", "", nil, true)
	testutil.CreateUser(t, env.usrRepo, "Bob", "bob", "bob@kazi.test", "", nil, true)
	testutil.CreateUser(t, env.usrRepo, "Gone", "gone", "gone@kazi.test", "", nil, false)

	n, err := env.svc.AccrueMonthlyLeave(ctx)
	if err != nil {
		t.Fatalf("AccrueMonthlyLeave() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("credited %d users, want 2", n)
	}

	jane, err = env.usrRepo.GetUser(ctx, user.GetFilter{ID: jane.ID})
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}
	if jane.LeaveDays != core.Conf.MonthlyLeaveDays {
		t.Errorf("LeaveDays = %v, want %v", jane.LeaveDays, core.Conf.MonthlyLeaveDays)
	}

	// running it again in the same month is a no-op
	n, err = env.svc.AccrueMonthlyLeave(ctx)
	if err != nil {
		t.Fatalf("AccrueMonthlyLeave() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("credited %d users on rerun, want 0", n)
	}
}
