package request

import "testing"

func TestStatus_Text(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusPending, "pending"},
		{StatusApproved, "approved"},
		{StatusRejected, "rejected"},
		{StatusCancelled, "cancelled"},
		{StatusConfirmed, "confirmed"},
		{Status(0), "unknown"},
		{Status(42), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusFromText(t *testing.T) {
	tests := []struct {
		text string
		want Status
	}{
		{"pending", StatusPending},
		{"approved", StatusApproved},
		{"rejected", StatusRejected},
		{"cancelled", StatusCancelled},
		{"confirmed", StatusConfirmed},
		// anything unrecognized must never read as decided
		{"", StatusPending},
		{"nope", StatusPending},
		{"Approved", StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := StatusFromText(tt.text); got != tt.want {
				t.Errorf("StatusFromText(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestStatus_Terminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusConfirmed, false},
		{StatusApproved, true},
		{StatusRejected, true},
		{StatusCancelled, true},
	}
	for _, tt := range tests {
		t.Run(tt.status.Text(), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}
