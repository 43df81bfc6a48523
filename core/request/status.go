package request

// Status is the approval workflow state. The 1-4 codes are the wire values
// the clients already speak; confirmed is the intermediate review step and
// got the next free code.
type Status int

const (
	StatusPending   Status = 1
	StatusApproved  Status = 2
	StatusRejected  Status = 3
	StatusCancelled Status = 4
	StatusConfirmed Status = 5
)

var statusTexts = map[Status]string{
	StatusPending:   "pending",
	StatusApproved:  "approved",
	StatusRejected:  "rejected",
	StatusCancelled: "cancelled",
	StatusConfirmed: "confirmed",
}

// Text returns the status display text; "unknown" for unrecognized codes.
func (s Status) Text() string {
	if text, ok := statusTexts[s]; ok {
		return text
	}
	return "unknown"
}

func (s Status) String() string { return s.Text() }

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// StatusFromText maps display text back to a status code. Missing or
// unrecognized input maps to pending on purpose: a request we know nothing
// about must never be treated as decided.
func StatusFromText(text string) Status {
	for s, t := range statusTexts {
		if t == text {
			return s
		}
	}
	return StatusPending
}
