package attendance

import "time"

// Official shift: 08:30 - 17:30, lunch 12:00 - 13:00, 8 required hours.
const (
	shiftStartHour   = 8
	shiftStartMinute = 30
	shiftEndHour     = 17
	shiftEndMinute   = 30
	lunchStartHour   = 12
	lunchEndHour     = 13

	RequiredDailyHours = 8.0
	overtimeHours      = RequiredDailyHours + 2
	excessiveHours     = 12.0
)

// CheckInStatus classifies a check-in against the shift start.
type CheckInStatus string

const (
	CheckInOnTime CheckInStatus = "on_time"
	CheckInLate   CheckInStatus = "late"
)

// CheckOutStatus classifies a check-out against the shift end and the
// lunch-adjusted worked hours.
type CheckOutStatus string

const (
	CheckOutMissing      CheckOutStatus = "missing"
	CheckOutEarly        CheckOutStatus = "early"
	CheckOutInsufficient CheckOutStatus = "insufficient"
	CheckOutNormal       CheckOutStatus = "normal"
	CheckOutOvertime     CheckOutStatus = "overtime"
	// CheckOutUnusual flags anomalous spans (> 12h), distinct from normal overtime.
	CheckOutUnusual CheckOutStatus = "unusual"
)

// Status is the overall per-day classification.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
	StatusLeave   Status = "leave"
	StatusWFH     Status = "wfh"
)

// Calendar derives shift classifications from timestamp pairs. Shift and
// lunch boundaries are computed in the calendar's timezone; the timestamps
// themselves stay timezone-independent.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

func (c Calendar) Location() *time.Location { return c.loc }

// DayOf truncates t to midnight of its calendar day.
func (c Calendar) DayOf(t time.Time) time.Time {
	lt := t.In(c.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, c.loc)
}

// IsWorkDay returns true Monday through Friday; there is no holiday calendar.
func (c Calendar) IsWorkDay(t time.Time) bool {
	switch t.In(c.loc).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}

func (c Calendar) shiftStart(t time.Time) time.Time {
	lt := t.In(c.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), shiftStartHour, shiftStartMinute, 0, 0, c.loc)
}

func (c Calendar) shiftEnd(t time.Time) time.Time {
	lt := t.In(c.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), shiftEndHour, shiftEndMinute, 0, 0, c.loc)
}

// lunchWindow is anchored to t's calendar day. WorkHours anchors it to the
// check-in day, which matters for overnight spans.
func (c Calendar) lunchWindow(t time.Time) (time.Time, time.Time) {
	lt := t.In(c.loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), lunchStartHour, 0, 0, 0, c.loc)
	end := time.Date(lt.Year(), lt.Month(), lt.Day(), lunchEndHour, 0, 0, 0, c.loc)
	return start, end
}

// WorkHours computes the lunch-adjusted hours between checkIn and checkOut.
// It returns 0 when either timestamp is missing or the pair is inverted.
func (c Calendar) WorkHours(checkIn, checkOut time.Time) float64 {
	if checkIn.IsZero() || checkOut.IsZero() || !checkOut.After(checkIn) {
		return 0
	}

	hours := checkOut.Sub(checkIn).Hours()

	lunchStart, lunchEnd := c.lunchWindow(checkIn)
	if checkIn.Before(lunchEnd) && checkOut.After(lunchStart) {
		ovStart := checkIn
		if lunchStart.After(ovStart) {
			ovStart = lunchStart
		}
		ovEnd := checkOut
		if lunchEnd.Before(ovEnd) {
			ovEnd = lunchEnd
		}
		if overlap := ovEnd.Sub(ovStart).Hours(); overlap > 0 {
			hours -= overlap
		}
	}

	if hours < 0 {
		return 0
	}
	return hours
}

// ClassifyCheckIn flags check-ins after the shift start as late.
func (c Calendar) ClassifyCheckIn(checkIn time.Time) CheckInStatus {
	if checkIn.IsZero() || checkIn.After(c.shiftStart(checkIn)) {
		return CheckInLate
	}
	return CheckInOnTime
}

// ClassifyCheckOut derives the check-out tier. The > 12h "unusual" check runs
// before the > 10h overtime check on purpose: the 10-12h band is overtime,
// anything beyond 12h is anomalous.
func (c Calendar) ClassifyCheckOut(checkIn, checkOut time.Time) CheckOutStatus {
	if checkOut.IsZero() {
		return CheckOutMissing
	}
	if checkOut.Before(c.shiftEnd(checkOut)) {
		return CheckOutEarly
	}

	hours := c.WorkHours(checkIn, checkOut)
	switch {
	case hours < RequiredDailyHours:
		return CheckOutInsufficient
	case hours > excessiveHours:
		return CheckOutUnusual
	case hours > overtimeHours:
		return CheckOutOvertime
	}
	return CheckOutNormal
}

// DayStatus derives the overall per-day status from the event pair.
func (c Calendar) DayStatus(checkIn, checkOut time.Time) Status {
	if checkIn.IsZero() {
		return StatusAbsent
	}
	if c.ClassifyCheckIn(checkIn) == CheckInLate {
		return StatusLate
	}
	if !checkOut.IsZero() && c.WorkHours(checkIn, checkOut) < RequiredDailyHours/2 {
		return StatusHalfDay
	}
	return StatusPresent
}
