package helper

import "time"

// The two daily attendance sessions. Windows are fixed by campus policy,
// inclusive on both ends, evaluated against the service-local wall clock.
const (
	SessionAM = "AM"
	SessionPM = "PM"
)

// window bounds in seconds since midnight
const (
	amStart = 9 * 3600  // 09:00:00
	amEnd   = 13 * 3600 // 13:00:00
	pmStart = 14 * 3600 // 14:00:00
	pmEnd   = 17 * 3600 // 17:00:00
)

func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// CurrentSession maps a wall-clock time to the active session. ok is false
// outside both windows, meaning attendance cannot be marked at all.
func CurrentSession(now time.Time) (string, bool) {
	s := secondsOfDay(now)
	switch {
	case s >= amStart && s <= amEnd:
		return SessionAM, true
	case s >= pmStart && s <= pmEnd:
		return SessionPM, true
	}
	return "", false
}

// InSessionWindow reports whether now still falls inside the window of an
// already-computed session. The gate re-checks this to defend against a
// stale session value from a request that straddled a window boundary.
func InSessionWindow(session string, now time.Time) bool {
	s := secondsOfDay(now)
	switch session {
	case SessionAM:
		return s >= amStart && s <= amEnd
	case SessionPM:
		return s >= pmStart && s <= pmEnd
	}
	return false
}

// SessionWindowMessage is the operator-facing reason used when the window
// re-check fails. Shown verbatim in the UI.
func SessionWindowMessage(session string) string {
	switch session {
	case SessionAM:
		return "Attendance only allowed 9AM-1PM for morning session"
	case SessionPM:
		return "Attendance only allowed 2PM-5PM for afternoon session"
	}
	return "Invalid session type"
}

// OutsideHoursMessage covers the no-active-session case.
const OutsideHoursMessage = "Attendance only allowed 9AM-1PM or 2PM-5PM"
