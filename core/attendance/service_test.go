package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/kazi/core/attendance"
	"github.com/trezcool/kazi/storage/database/dummy"
)

func newTestService(t *testing.T) attendance.Service {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	return attendance.NewService(dummydb.NewAttendanceRepository(db), attendance.NewCalendar(nil))
}

func setNow(t *testing.T, now time.Time) {
	t.Helper()

	orig := attendance.NowFunc
	attendance.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { attendance.NowFunc = orig })
}

func TestService_CheckInCheckOut(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// Monday 08:15
	setNow(t, time.Date(2021, 6, 7, 8, 15, 0, 0, time.UTC))

	rec, err := svc.CheckIn(ctx, "usr1", attendance.CheckInput{Note: "morning"})
	if err != nil {
		t.Fatalf("CheckIn() failed: %v", err)
	}
	if rec.CheckInStatus != attendance.CheckInOnTime {
		t.Errorf("CheckInStatus = %v, want %v", rec.CheckInStatus, attendance.CheckInOnTime)
	}
	if rec.CheckOutStatus != attendance.CheckOutMissing {
		t.Errorf("CheckOutStatus = %v, want %v", rec.CheckOutStatus, attendance.CheckOutMissing)
	}
	if rec.Status != attendance.StatusPresent {
		t.Errorf("Status = %v, want %v", rec.Status, attendance.StatusPresent)
	}
	if rec.CheckIn == nil || rec.CheckIn.Note != "morning" {
		t.Errorf("CheckIn event = %+v, want note %q", rec.CheckIn, "morning")
	}

	// a second submission for the same day collapses to the first record
	if _, err = svc.CheckIn(ctx, "usr1", attendance.CheckInput{}); err != attendance.ErrAlreadyCheckedIn {
		t.Errorf("second CheckIn() err = %v, want %v", err, attendance.ErrAlreadyCheckedIn)
	}

	// check-out without a check-in
	if _, err = svc.CheckOut(ctx, "usr2", attendance.CheckInput{}); err != attendance.ErrNotCheckedIn {
		t.Errorf("CheckOut() without check-in err = %v, want %v", err, attendance.ErrNotCheckedIn)
	}

	// Monday 17:30
	setNow(t, time.Date(2021, 6, 7, 17, 30, 0, 0, time.UTC))

	rec, err = svc.CheckOut(ctx, "usr1", attendance.CheckInput{Note: "done"})
	if err != nil {
		t.Fatalf("CheckOut() failed: %v", err)
	}
	if rec.CheckOutStatus != attendance.CheckOutNormal {
		t.Errorf("CheckOutStatus = %v, want %v", rec.CheckOutStatus, attendance.CheckOutNormal)
	}
	if want := 8.25; rec.TotalHours != want {
		t.Errorf("TotalHours = %v, want %v", rec.TotalHours, want)
	}
	if rec.CheckOut == nil || rec.CheckOut.Note != "done" {
		t.Errorf("CheckOut event = %+v, want note %q", rec.CheckOut, "done")
	}

	if _, err = svc.CheckOut(ctx, "usr1", attendance.CheckInput{}); err != attendance.ErrAlreadyCheckedOut {
		t.Errorf("second CheckOut() err = %v, want %v", err, attendance.ErrAlreadyCheckedOut)
	}
}

func TestService_Today(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	setNow(t, time.Date(2021, 6, 7, 9, 0, 0, 0, time.UTC))

	if _, err := svc.Today(ctx, "usr1"); err != attendance.ErrNotFound {
		t.Errorf("Today() err = %v, want %v", err, attendance.ErrNotFound)
	}

	if _, err := svc.CheckIn(ctx, "usr1", attendance.CheckInput{}); err != nil {
		t.Fatalf("CheckIn() failed: %v", err)
	}
	rec, err := svc.Today(ctx, "usr1")
	if err != nil {
		t.Fatalf("Today() failed: %v", err)
	}
	if rec.UserID != "usr1" {
		t.Errorf("UserID = %v, want usr1", rec.UserID)
	}
	if rec.Status != attendance.StatusLate {
		t.Errorf("Status = %v, want %v", rec.Status, attendance.StatusLate)
	}
}

func TestService_ApplyCorrection(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// late check-in on Monday
	setNow(t, time.Date(2021, 6, 7, 10, 0, 0, 0, time.UTC))
	if _, err := svc.CheckIn(ctx, "usr1", attendance.CheckInput{}); err != nil {
		t.Fatalf("CheckIn() failed: %v", err)
	}

	// corrected to a full on-time day
	rec, err := svc.ApplyCorrection(ctx, "usr1",
		time.Date(2021, 6, 7, 8, 30, 0, 0, time.UTC),
		time.Date(2021, 6, 7, 17, 30, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("ApplyCorrection() failed: %v", err)
	}
	if rec.Status != attendance.StatusPresent {
		t.Errorf("Status = %v, want %v", rec.Status, attendance.StatusPresent)
	}
	if rec.CheckInStatus != attendance.CheckInOnTime {
		t.Errorf("CheckInStatus = %v, want %v", rec.CheckInStatus, attendance.CheckInOnTime)
	}
	if rec.CheckOutStatus != attendance.CheckOutNormal {
		t.Errorf("CheckOutStatus = %v, want %v", rec.CheckOutStatus, attendance.CheckOutNormal)
	}
	if want := 8.0; rec.TotalHours != want {
		t.Errorf("TotalHours = %v, want %v", rec.TotalHours, want)
	}

	// the corrected record replaced the original, no new row
	recs, err := svc.Query(ctx, &attendance.QueryFilter{UserID: "usr1"}, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("Query() returned %d records, want 1", len(recs))
	}
}

func TestService_MarkDay(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	setNow(t, time.Date(2021, 6, 7, 9, 0, 0, 0, time.UTC))

	day := time.Date(2021, 6, 8, 0, 0, 0, 0, time.UTC)
	rec, err := svc.MarkDay(ctx, "usr1", day, attendance.StatusLeave, 0)
	if err != nil {
		t.Fatalf("MarkDay() failed: %v", err)
	}
	if rec.Status != attendance.StatusLeave {
		t.Errorf("Status = %v, want %v", rec.Status, attendance.StatusLeave)
	}
	if rec.CheckIn != nil || rec.CheckOut != nil {
		t.Errorf("marked day carries events: %+v %+v", rec.CheckIn, rec.CheckOut)
	}

	rec, err = svc.MarkDay(ctx, "usr1", day, attendance.StatusWFH, attendance.RequiredDailyHours)
	if err != nil {
		t.Fatalf("MarkDay() failed: %v", err)
	}
	if rec.Status != attendance.StatusWFH {
		t.Errorf("Status = %v, want %v", rec.Status, attendance.StatusWFH)
	}
	if rec.TotalHours != attendance.RequiredDailyHours {
		t.Errorf("TotalHours = %v, want %v", rec.TotalHours, attendance.RequiredDailyHours)
	}
}
