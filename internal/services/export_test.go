package services

import "time"

// SetChecklistClock replaces the clock used for date found.
func SetChecklistClock(s *ChecklistService, now func() time.Time) {
	s.now = now
}
