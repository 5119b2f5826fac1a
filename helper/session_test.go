package helper

import (
	"testing"
	"time"
)

func at(hour, min, sec int) time.Time {
	return time.Date(2024, 3, 11, hour, min, sec, 0, time.Local)
}

func TestCurrentSession(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		want    string
		wantOK  bool
	}{
		{"just before AM opens", at(8, 59, 59), "", false},
		{"AM lower bound", at(9, 0, 0), SessionAM, true},
		{"mid morning", at(10, 0, 0), SessionAM, true},
		{"AM upper bound inclusive", at(13, 0, 0), SessionAM, true},
		{"one second past AM", at(13, 0, 1), "", false},
		{"lunch gap", at(13, 30, 0), "", false},
		{"PM lower bound", at(14, 0, 0), SessionPM, true},
		{"mid afternoon", at(15, 30, 0), SessionPM, true},
		{"PM upper bound inclusive", at(17, 0, 0), SessionPM, true},
		{"one second past PM", at(17, 0, 1), "", false},
		{"evening", at(20, 0, 0), "", false},
		{"midnight", at(0, 0, 0), "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CurrentSession(tc.now)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("CurrentSession(%s) = (%q, %v), want (%q, %v)",
					tc.now.Format("15:04:05"), got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestInSessionWindow(t *testing.T) {
	tests := []struct {
		name    string
		session string
		now     time.Time
		want    bool
	}{
		{"AM inside", SessionAM, at(11, 0, 0), true},
		{"AM bounds", SessionAM, at(9, 0, 0), true},
		{"AM stale after window", SessionAM, at(13, 0, 1), false},
		{"PM inside", SessionPM, at(16, 0, 0), true},
		{"PM during AM hours", SessionPM, at(10, 0, 0), false},
		{"unknown session", "XX", at(10, 0, 0), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := InSessionWindow(tc.session, tc.now); got != tc.want {
				t.Errorf("InSessionWindow(%q, %s) = %v, want %v",
					tc.session, tc.now.Format("15:04:05"), got, tc.want)
			}
		})
	}
}

func TestSessionWindowMessage(t *testing.T) {
	if got := SessionWindowMessage(SessionAM); got != "Attendance only allowed 9AM-1PM for morning session" {
		t.Errorf("AM message = %q", got)
	}
	if got := SessionWindowMessage(SessionPM); got != "Attendance only allowed 2PM-5PM for afternoon session" {
		t.Errorf("PM message = %q", got)
	}
	if got := SessionWindowMessage("nope"); got != "Invalid session type" {
		t.Errorf("fallback message = %q", got)
	}
}
