package domain

import (
	"errors"
	"fmt"

	"github.com/avenirbook/scheduling-engine/pkg/types"
)

var (
	// ErrInvalidInterval возвращается при некорректном интервале
	// (нулевая/отрицательная длительность или выход за границу суток)
	ErrInvalidInterval = errors.New("domain: invalid interval")
)

// Interval is a half-open time interval [Start, End) within a single
// calendar date. Back-to-back intervals (one ending exactly where the
// other starts) do not overlap.
type Interval struct {
	Start types.TimeString
	End   types.TimeString
}

// NewInterval создает интервал от start длительностью durationMinutes.
// Интервалы через полночь запрещены: конец должен быть в тех же сутках
// и строго позже начала.
func NewInterval(start types.TimeString, durationMinutes int) (Interval, error) {
	if durationMinutes <= 0 {
		return Interval{}, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidInterval, durationMinutes)
	}

	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	}

	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether two intervals share at least one instant.
// Strict half-open comparison: a.Start < b.End && b.Start < a.End,
// so end == start never counts as a conflict.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.IsBefore(other.End) && other.Start.IsBefore(i.End)
}

// Covers reports whether the instant (minutes since midnight) lies
// inside the half-open interval
func (i Interval) Covers(instantMinutes int) bool {
	return i.Start.Minutes() <= instantMinutes && instantMinutes < i.End.Minutes()
}

// DurationMinutes возвращает длительность интервала в минутах
func (i Interval) DurationMinutes() int {
	return i.End.Minutes() - i.Start.Minutes()
}
