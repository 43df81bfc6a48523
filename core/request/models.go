package request

import (
	"time"

	"github.com/trezcool/kazi/core"
)

// Request types
type Type string

const (
	TypeWorkTime Type = "work_time"
	TypeLeave    Type = "leave"
	TypeWFH      Type = "wfh"
	TypeOvertime Type = "overtime"
)

var AllTypes = []Type{TypeWorkTime, TypeLeave, TypeWFH, TypeOvertime}

// ProcessInfo captures who acted on a request, when, and why.
type ProcessInfo struct {
	Actor   string    `json:"actor"`
	Time    time.Time `json:"time"` // UTC
	Comment string    `json:"comment,omitempty"`
}

// Request is a user-submitted ask to amend attendance, take leave, work from
// home or log overtime. At most one of ApprovedBy/RejectedBy/CancelledBy is
// ever set; ConfirmedBy may precede a terminal outcome.
type Request struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      Type      `json:"type"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Reason    string    `json:"reason"`
	LeaveDays float64   `json:"leave_days,omitempty"`
	Status    Status    `json:"status"`

	ConfirmedBy *ProcessInfo `json:"confirmed_by,omitempty"`
	ApprovedBy  *ProcessInfo `json:"approved_by,omitempty"`
	RejectedBy  *ProcessInfo `json:"rejected_by,omitempty"`
	CancelledBy *ProcessInfo `json:"cancelled_by,omitempty"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewRequest contains information needed to create a new Request.
type NewRequest struct {
	Type      string    `json:"type" validate:"required,oneof=work_time leave wfh overtime"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Reason    string    `json:"reason" validate:"required,max=500"`
	LeaveDays float64   `json:"leave_days" validate:"omitempty,gt=0"`
}

func (nr *NewRequest) Validate() error {
	nr.Reason = core.CleanString(nr.Reason)
	if err := core.Validate.Struct(nr); err != nil {
		return err
	}
	if Type(nr.Type) == TypeLeave && nr.LeaveDays <= 0 {
		return core.NewValidationError(nil, core.FieldError{
			Field: "leave_days", Error: "leave requests must state the number of leave days",
		})
	}
	return nil
}

// Decision carries the optional comment on a confirm/approve/reject/cancel action.
type Decision struct {
	Comment string `json:"comment" validate:"max=500"`
}

func (d *Decision) Validate() error {
	d.Comment = core.CleanString(d.Comment)
	return core.Validate.Struct(d)
}

type QueryFilter struct {
	UserID   string    `query:"-"`
	Status   Status    `query:"status"`
	Type     Type      `query:"type"`
	DateFrom time.Time `query:"start_date"`
	DateTo   time.Time `query:"end_date"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.UserID == "" && qf.Status == 0 && qf.Type == "" && qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}
