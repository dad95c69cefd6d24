package domain

import "time"

// Slot represents a half-open time bucket [Start, End) of a service's day schedule
type Slot struct {
	Start     time.Time
	End       time.Time
	Available bool
}

// BuildDaySlots enumerates fixed-size buckets from opening to closing time of the day
// and marks each bucket against the active reservations independently
// A bucket starting exactly where a reservation ends is available (half-open intervals)
func BuildDaySlots(day time.Time, openHour, closeHour, durationMinutes int, reservations []*Reservation) []Slot {
	if durationMinutes <= 0 {
		return []Slot{}
	}

	loc := day.Location()
	open := time.Date(day.Year(), day.Month(), day.Day(), openHour, 0, 0, 0, loc)
	close := time.Date(day.Year(), day.Month(), day.Day(), closeHour, 0, 0, 0, loc)
	step := time.Duration(durationMinutes) * time.Minute

	slots := make([]Slot, 0)
	for start := open; !start.Add(step).After(close); start = start.Add(step) {
		end := start.Add(step)

		available := true
		for _, r := range reservations {
			if !r.IsActive() {
				continue
			}
			if r.Overlaps(start, end) {
				available = false
				break
			}
		}

		slots = append(slots, Slot{Start: start, End: end, Available: available})
	}

	return slots
}
