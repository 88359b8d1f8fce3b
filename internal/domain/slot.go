package domain

import "github.com/sharpcut/booking-service/pkg/types"

// AvailableSlot represents a bookable (start time, duration) candidate for a
// given barber and date. Slots are derived, never stored: the set is
// recomputed from working hours and upcoming appointments on every query.
type AvailableSlot struct {
	StartTime       types.TimeString
	DurationMinutes int
}

// EndTime returns the wall-clock end of the slot interval
func (s *AvailableSlot) EndTime() (types.TimeString, error) {
	return s.StartTime.AddMinutes(s.DurationMinutes)
}
