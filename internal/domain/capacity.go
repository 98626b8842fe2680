package domain

// OccupancyAt returns how many of the given intervals cover the instant
// (minutes since midnight)
func OccupancyAt(instantMinutes int, intervals []Interval) int {
	count := 0
	for _, iv := range intervals {
		if iv.Covers(instantMinutes) {
			count++
		}
	}
	return count
}

// MaxOccupancyWithin returns the peak cover count of existing intervals
// inside the window. Cover counts only change at interval starts, so it is
// enough to probe the window start and every existing start inside the window.
func MaxOccupancyWithin(window Interval, existing []Interval) int {
	peak := OccupancyAt(window.Start.Minutes(), existing)

	for _, iv := range existing {
		p := iv.Start.Minutes()
		if !window.Covers(p) {
			continue
		}
		if n := OccupancyAt(p, existing); n > peak {
			peak = n
		}
	}

	return peak
}

// WouldExceedCapacity reports whether committing candidate on top of the
// existing occupied intervals would push occupancy over capacity at any
// instant. Implements a boundary sweep: for half-open intervals the cover
// count can only reach a new maximum at an interval start, so it is enough
// to check the candidate's start and the starts of existing intervals that
// fall inside the candidate.
//
// Generalizes plain 1-person conflict checking to N-concurrent-slot service
// points without special-casing capacity=1.
func WouldExceedCapacity(candidate Interval, existing []Interval, capacity int) bool {
	if capacity < MinConcurrentSlots {
		return true
	}

	// Занятость в точке начала кандидата
	if OccupancyAt(candidate.Start.Minutes(), existing)+1 > capacity {
		return true
	}

	// Занятость в точках начала существующих интервалов внутри кандидата
	for _, iv := range existing {
		p := iv.Start.Minutes()
		if !candidate.Covers(p) {
			continue
		}
		if OccupancyAt(p, existing)+1 > capacity {
			return true
		}
	}

	return false
}

// OccupiedIntervals собирает занятые интервалы из записей, учитываемых
// в occupancy (pending и confirmed). Записи с некорректным интервалом
// пропускаются.
func OccupiedIntervals(appointments []*Appointment) []Interval {
	intervals := make([]Interval, 0, len(appointments))
	for _, appt := range appointments {
		if !appt.OccupiesCapacity() {
			continue
		}
		iv, err := appt.Interval()
		if err != nil {
			continue
		}
		intervals = append(intervals, iv)
	}
	return intervals
}
