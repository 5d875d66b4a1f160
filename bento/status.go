package bento

import "time"

// =============================================================================
// STATUS DERIVATION - Pure, recomputed on each tick
// =============================================================================

// DeriveStatus computes the display status of e at now.
//
//	cancelled          -> cancelled (absorbing)
//	now <  start       -> scheduled
//	start <= now < end -> in-progress
//	now >= end         -> completed
//
// It never mutates anything; only manual cancellation is stored.
func DeriveStatus(e ScheduledEncounter, now time.Time) Status {
	switch {
	case e.Status == StatusCancelled:
		return StatusCancelled
	case now.Before(e.Start):
		return StatusScheduled
	case now.Before(e.End):
		return StatusInProgress
	default:
		return StatusCompleted
	}
}

// statusColors is the only color table; encounter colors cached from the
// template are used for the pool and composer, not for calendar status.
var statusColors = map[Status]string{
	StatusScheduled:  "#3b82f6",
	StatusInProgress: "#f59e0b",
	StatusCompleted:  "#10b981",
	StatusCancelled:  "#ef4444",
}

// StatusColor returns the display color of a status.
func StatusColor(s Status) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return statusColors[StatusScheduled]
}

// StatusSummary counts encounters by derived status at now.
func StatusSummary(encounters []ScheduledEncounter, now time.Time) map[Status]int {
	out := map[Status]int{
		StatusScheduled:  0,
		StatusInProgress: 0,
		StatusCompleted:  0,
		StatusCancelled:  0,
	}
	for _, e := range encounters {
		out[DeriveStatus(e, now)]++
	}
	return out
}
