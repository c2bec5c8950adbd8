package domain

import "time"

// EventStatus is the tri-state lifecycle label computed from an event's
// start time. It is derived on every read, never stored.
type EventStatus string

const (
	StatusPending EventStatus = "pending"
	StatusDue     EventStatus = "due"
	StatusOverdue EventStatus = "overdue"
)

// DueWindow is how long before its start time an event counts as due.
const DueWindow = 24 * time.Hour

// ClassifyStatus maps an event's start time and the current time to a
// lifecycle label. Overdue is checked first, so the instant now == startTime
// is Due (now is not strictly after startTime) and the instant
// now == startTime - DueWindow is Due (the lower bound is inclusive).
func ClassifyStatus(startTime, now time.Time) EventStatus {
	if now.After(startTime) {
		return StatusOverdue
	}
	if !now.Before(startTime.Add(-DueWindow)) {
		return StatusDue
	}
	return StatusPending
}
