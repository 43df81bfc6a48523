package request

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/attendance"
	"github.com/trezcool/kazi/core/user"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound = errors.New("request not found")
	ErrNotOwner = errors.New("request belongs to another user")

	ErrRequestClosed  = core.NewConflictError("request already finalized")
	ErrStatusChanged  = core.NewConflictError("request was modified concurrently")
	ErrOverlapPending = core.NewValidationError(errors.New("an open request already covers this time range"))
)

type (
	Repository interface {
		CreateRequest(ctx context.Context, req Request) (Request, error)
		GetRequest(ctx context.Context, id string) (Request, error)
		QueryRequests(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Request, error)
		// HasOpenOverlap reports whether the user already has a pending or
		// confirmed request of the same type overlapping [start, end].
		HasOpenOverlap(ctx context.Context, userID string, typ Type, start, end time.Time) (bool, error)
		// TransitionRequest persists req's status and ProcessInfo blocks only
		// while the stored status is one of `from`; a losing writer gets
		// ErrStatusChanged. This conditional update serializes concurrent
		// approvals.
		TransitionRequest(ctx context.Context, req Request, from ...Status) (Request, error)
	}

	Service interface {
		Create(ctx context.Context, owner user.User, nr NewRequest) (Request, error)
		Get(ctx context.Context, id string) (Request, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Request, error)
		Confirm(ctx context.Context, actor user.User, id string, d Decision) (Request, error)
		Approve(ctx context.Context, actor user.User, id string, d Decision) (Request, error)
		Reject(ctx context.Context, actor user.User, id string, d Decision) (Request, error)
		Cancel(ctx context.Context, actor user.User, id string, d Decision) (Request, error)
		// AccrueMonthlyLeave credits every active user's leave-day balance for
		// the current month. Idempotent per user-month.
		AccrueMonthlyLeave(ctx context.Context) (int, error)
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		attSvc  attendance.Service
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, attSvc attendance.Service, mailSvc core.EmailService) Service {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
		attSvc:  attSvc,
		mailSvc: mailSvc,
	}
}

func (svc *service) Create(ctx context.Context, owner user.User, nr NewRequest) (Request, error) {
	overlap, err := svc.repo.HasOpenOverlap(ctx, owner.ID, Type(nr.Type), nr.StartTime, nr.EndTime)
	if err != nil {
		return Request{}, errors.Wrap(err, "checking for overlapping requests")
	}
	if overlap {
		return Request{}, ErrOverlapPending
	}

	now := NowFunc().UTC()
	req := Request{
		UserID:    owner.ID,
		Type:      Type(nr.Type),
		StartTime: nr.StartTime.UTC(),
		EndTime:   nr.EndTime.UTC(),
		Reason:    nr.Reason,
		LeaveDays: nr.LeaveDays,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateRequest(ctx, req)
}

func (svc *service) Get(ctx context.Context, id string) (Request, error) {
	return svc.repo.GetRequest(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Request, error) {
	return svc.repo.QueryRequests(ctx, filter, ordering)
}

func (svc *service) Confirm(ctx context.Context, actor user.User, id string, d Decision) (Request, error) {
	req, err := svc.load(ctx, id)
	if err != nil {
		return Request{}, err
	}
	req.Status = StatusConfirmed
	req.ConfirmedBy = &ProcessInfo{Actor: actor.ID, Time: NowFunc().UTC(), Comment: d.Comment}
	return svc.transition(ctx, req, StatusPending)
}

func (svc *service) Approve(ctx context.Context, actor user.User, id string, d Decision) (Request, error) {
	req, err := svc.load(ctx, id)
	if err != nil {
		return Request{}, err
	}

	// leave requests debit the owner's balance first; the transition is
	// compensated if it loses the race below.
	if req.Type == TypeLeave {
		if err := svc.usrRepo.DebitLeaveDays(ctx, req.UserID, req.LeaveDays); err != nil {
			if err == user.ErrInsufficientBalance {
				return Request{}, core.NewValidationError(err, core.FieldError{Field: "leave_days", Error: err.Error()})
			}
			return Request{}, errors.Wrap(err, "debiting leave days")
		}
	}

	req.Status = StatusApproved
	req.ApprovedBy = &ProcessInfo{Actor: actor.ID, Time: NowFunc().UTC(), Comment: d.Comment}
	updated, err := svc.transition(ctx, req, StatusPending, StatusConfirmed)
	if err != nil {
		if req.Type == TypeLeave {
			_ = svc.usrRepo.CreditLeaveDays(ctx, req.UserID, req.LeaveDays)
		}
		return Request{}, err
	}
	req = updated

	if err := svc.amendAttendance(ctx, req); err != nil {
		return Request{}, err
	}
	svc.notifyOwner(ctx, req)
	return req, nil
}

func (svc *service) Reject(ctx context.Context, actor user.User, id string, d Decision) (Request, error) {
	req, err := svc.load(ctx, id)
	if err != nil {
		return Request{}, err
	}
	req.Status = StatusRejected
	req.RejectedBy = &ProcessInfo{Actor: actor.ID, Time: NowFunc().UTC(), Comment: d.Comment}
	req, err = svc.transition(ctx, req, StatusPending, StatusConfirmed)
	if err != nil {
		return Request{}, err
	}
	svc.notifyOwner(ctx, req)
	return req, nil
}

func (svc *service) Cancel(ctx context.Context, actor user.User, id string, d Decision) (Request, error) {
	req, err := svc.load(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.UserID != actor.ID {
		return Request{}, ErrNotOwner
	}
	req.Status = StatusCancelled
	req.CancelledBy = &ProcessInfo{Actor: actor.ID, Time: NowFunc().UTC(), Comment: d.Comment}
	return svc.transition(ctx, req, StatusPending, StatusConfirmed)
}

func (svc *service) AccrueMonthlyLeave(ctx context.Context) (int, error) {
	month := NowFunc().In(svc.attSvc.Calendar().Location()).Format("2006-01")
	n, err := svc.usrRepo.AccrueLeaveDays(ctx, core.Conf.MonthlyLeaveDays, month)
	return n, errors.Wrap(err, "accruing monthly leave")
}

func (svc *service) load(ctx context.Context, id string) (Request, error) {
	req, err := svc.repo.GetRequest(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.Status.Terminal() {
		return Request{}, ErrRequestClosed
	}
	return req, nil
}

func (svc *service) transition(ctx context.Context, req Request, from ...Status) (Request, error) {
	req.UpdatedAt = NowFunc().UTC()
	req, err := svc.repo.TransitionRequest(ctx, req, from...)
	if err == ErrStatusChanged || err == ErrNotFound {
		return req, err
	}
	return req, errors.Wrap(err, "persisting request transition")
}

// amendAttendance reflects an approved request onto the covered attendance days.
func (svc *service) amendAttendance(ctx context.Context, req Request) error {
	cal := svc.attSvc.Calendar()

	switch req.Type {
	case TypeWorkTime, TypeOvertime:
		_, err := svc.attSvc.ApplyCorrection(ctx, req.UserID, req.StartTime, req.EndTime)
		return err
	case TypeLeave, TypeWFH:
		status, hours := attendance.StatusLeave, 0.0
		if req.Type == TypeWFH {
			status, hours = attendance.StatusWFH, attendance.RequiredDailyHours
		}
		for day := cal.DayOf(req.StartTime); !day.After(req.EndTime); day = day.AddDate(0, 0, 1) {
			if !cal.IsWorkDay(day) {
				continue
			}
			if _, err := svc.attSvc.MarkDay(ctx, req.UserID, day, status, hours); err != nil {
				return err
			}
		}
	}
	return nil
}

func (svc *service) notifyOwner(ctx context.Context, req Request) {
	owner, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: req.UserID})
	if err != nil || owner.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: owner.Name, Address: owner.Email}},
		Subject: fmt.Sprintf("Your %s request has been %s", req.Type, req.Status.Text()),
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nYour %s request covering %s to %s has been %s.",
			owner.Name, req.Type,
			req.StartTime.Format("Jan 2, 2006 15:04"), req.EndTime.Format("Jan 2, 2006 15:04"),
			req.Status.Text()),
	})
}
