package domain

import "github.com/avenirbook/scheduling-engine/pkg/types"

// TimeSlot is a transient, computed candidate slot. Never persisted;
// recomputed on every availability query.
type TimeSlot struct {
	StartTime       types.TimeString
	DurationMinutes int
	AvailableSpots  int // свободные места с учётом вместимости ресурса(ов)
	TotalSpots      int // суммарная вместимость
}

// IsAvailable returns true if the slot has at least one free spot
func (s *TimeSlot) IsAvailable() bool {
	return s.AvailableSpots > 0
}

// IsFull returns true if the slot has no available spots
func (s *TimeSlot) IsFull() bool {
	return s.AvailableSpots <= 0
}

// IsPartiallyAvailable returns true if the slot has some but not all spots available
func (s *TimeSlot) IsPartiallyAvailable() bool {
	return s.AvailableSpots > 0 && s.AvailableSpots < s.TotalSpots
}

// OccupancyRate returns the occupancy rate as a percentage (0-100)
func (s *TimeSlot) OccupancyRate() float64 {
	if s.TotalSpots == 0 {
		return 0
	}
	occupied := s.TotalSpots - s.AvailableSpots
	return float64(occupied) / float64(s.TotalSpots) * 100
}
