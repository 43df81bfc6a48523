package attendance

import (
	"time"

	"github.com/trezcool/kazi/core"
)

// CheckEvent is a single check-in or check-out action.
type CheckEvent struct {
	Time time.Time `json:"time"`
	Note string    `json:"note,omitempty"`
}

// Record is the per-user, per-day attendance history. Records are never
// deleted; an approved correction request may amend one.
type Record struct {
	ID     string    `json:"id"`
	UserID string    `json:"user_id"`
	Date   time.Time `json:"date"` // midnight in the calendar's timezone

	CheckIn        *CheckEvent    `json:"check_in,omitempty"`
	CheckOut       *CheckEvent    `json:"check_out,omitempty"`
	CheckInStatus  CheckInStatus  `json:"check_in_status,omitempty"`
	CheckOutStatus CheckOutStatus `json:"check_out_status,omitempty"`
	Status         Status         `json:"status"`
	// TotalHours is always recomputed from the event pair via the Calendar,
	// never set independently.
	TotalHours float64 `json:"total_hours"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (r *Record) CheckInTime() time.Time {
	if r.CheckIn == nil {
		return time.Time{}
	}
	return r.CheckIn.Time
}

func (r *Record) CheckOutTime() time.Time {
	if r.CheckOut == nil {
		return time.Time{}
	}
	return r.CheckOut.Time
}

// CheckInput carries the optional note on a check-in/check-out action.
type CheckInput struct {
	Note string `json:"note" validate:"max=500"`
}

func (ci *CheckInput) Validate() error {
	ci.Note = core.CleanString(ci.Note)
	return core.Validate.Struct(ci)
}

type QueryFilter struct {
	UserID   string    `query:"-"`
	DateFrom time.Time `query:"start_date"`
	DateTo   time.Time `query:"end_date"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.UserID == "" && qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}
