package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound     = errors.New("attendance record not found")
	ErrRecordExists = errors.New("attendance record already exists for this day")

	ErrAlreadyCheckedIn  = core.NewConflictError("already checked in today")
	ErrAlreadyCheckedOut = core.NewConflictError("already checked out today")
	ErrNotCheckedIn      = core.NewValidationError(errors.New("not checked in today"))
)

type (
	Repository interface {
		// CreateRecord inserts a new per-day record; returns ErrRecordExists
		// when a record for the same (user, date) key already exists.
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		GetRecord(ctx context.Context, userID string, date time.Time) (Record, error)
		QueryRecords(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Record, error)
		// SetCheckOut persists the check-out fields only while the stored
		// record has no check-out yet; a losing writer gets ErrAlreadyCheckedOut.
		SetCheckOut(ctx context.Context, rec Record) (Record, error)
		// UpsertRecord creates or overwrites the (user, date) record; used by
		// approved correction requests.
		UpsertRecord(ctx context.Context, rec Record) (Record, error)
	}

	Service interface {
		CheckIn(ctx context.Context, userID string, in CheckInput) (Record, error)
		CheckOut(ctx context.Context, userID string, in CheckInput) (Record, error)
		Today(ctx context.Context, userID string) (Record, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Record, error)
		// ApplyCorrection overwrites the day's event pair and reclassifies it.
		ApplyCorrection(ctx context.Context, userID string, checkIn, checkOut time.Time) (Record, error)
		// MarkDay records an event-less day (leave, wfh) with fixed hours.
		MarkDay(ctx context.Context, userID string, day time.Time, status Status, hours float64) (Record, error)
		Calendar() Calendar
	}

	service struct {
		cal  Calendar
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, cal Calendar) Service {
	return &service{cal: cal, repo: repo}
}

func (svc *service) Calendar() Calendar { return svc.cal }

func (svc *service) CheckIn(ctx context.Context, userID string, in CheckInput) (Record, error) {
	now := NowFunc()
	rec := Record{
		UserID:         userID,
		Date:           svc.cal.DayOf(now),
		CheckIn:        &CheckEvent{Time: now.UTC(), Note: in.Note},
		CheckInStatus:  svc.cal.ClassifyCheckIn(now),
		CheckOutStatus: CheckOutMissing,
		Status:         svc.cal.DayStatus(now, time.Time{}),
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}
	rec, err := svc.repo.CreateRecord(ctx, rec)
	if err != nil {
		if err == ErrRecordExists {
			// duplicate submissions collapse to the first committed record
			return Record{}, ErrAlreadyCheckedIn
		}
		return Record{}, errors.Wrap(err, "creating attendance record")
	}
	return rec, nil
}

func (svc *service) CheckOut(ctx context.Context, userID string, in CheckInput) (Record, error) {
	now := NowFunc()
	rec, err := svc.repo.GetRecord(ctx, userID, svc.cal.DayOf(now))
	if err != nil {
		if err == ErrNotFound {
			return Record{}, ErrNotCheckedIn
		}
		return Record{}, errors.Wrap(err, "finding today's attendance record")
	}
	if rec.CheckOut != nil {
		return Record{}, ErrAlreadyCheckedOut
	}

	rec.CheckOut = &CheckEvent{Time: now.UTC(), Note: in.Note}
	svc.reclassify(&rec)
	rec.UpdatedAt = now.UTC()

	rec, err = svc.repo.SetCheckOut(ctx, rec)
	if err != nil {
		if err == ErrAlreadyCheckedOut {
			return Record{}, err
		}
		return Record{}, errors.Wrap(err, "saving check-out")
	}
	return rec, nil
}

func (svc *service) Today(ctx context.Context, userID string) (Record, error) {
	return svc.repo.GetRecord(ctx, userID, svc.cal.DayOf(NowFunc()))
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, filter, ordering)
}

func (svc *service) ApplyCorrection(ctx context.Context, userID string, checkIn, checkOut time.Time) (Record, error) {
	now := NowFunc().UTC()
	rec := Record{
		UserID:    userID,
		Date:      svc.cal.DayOf(checkIn),
		CheckIn:   &CheckEvent{Time: checkIn.UTC()},
		CheckOut:  &CheckEvent{Time: checkOut.UTC()},
		CreatedAt: now,
		UpdatedAt: now,
	}
	svc.reclassify(&rec)
	rec, err := svc.repo.UpsertRecord(ctx, rec)
	return rec, errors.Wrap(err, "amending attendance record")
}

func (svc *service) MarkDay(ctx context.Context, userID string, day time.Time, status Status, hours float64) (Record, error) {
	now := NowFunc().UTC()
	rec := Record{
		UserID:     userID,
		Date:       svc.cal.DayOf(day),
		Status:     status,
		TotalHours: hours,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	rec, err := svc.repo.UpsertRecord(ctx, rec)
	return rec, errors.Wrap(err, "marking attendance day")
}

// reclassify recomputes every derived field from the event pair.
func (svc *service) reclassify(rec *Record) {
	in, out := rec.CheckInTime(), rec.CheckOutTime()
	rec.CheckInStatus = svc.cal.ClassifyCheckIn(in)
	rec.CheckOutStatus = svc.cal.ClassifyCheckOut(in, out)
	rec.Status = svc.cal.DayStatus(in, out)
	rec.TotalHours = svc.cal.WorkHours(in, out)
}
