package get_available_slots

import (
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/internal/integrations/directory"
	"github.com/avenirbook/scheduling-engine/pkg/types"
)

// generateStartTimes генерирует кандидатов начала слота в рабочем окне дня.
// Кандидаты идут с шагом granularity от времени открытия; слот, чей конец
// (start + duration) выходит за время закрытия, отбрасывается — услуга
// длиннее остатка рабочего дня дает ноль слотов ближе к закрытию.
//
// Для сегодняшней даты дополнительно отбрасываются слоты, начинающиеся
// раньше now + minBookingNoticeMinutes (cutoff в таймзоне бизнеса).
func generateStartTimes(
	workingHours directory.DaySchedule,
	granularityMinutes int,
	durationMinutes int,
	requestDate time.Time,
	now time.Time,
	minBookingNoticeMinutes int,
) ([]types.TimeString, error) {
	if isDateInPast(requestDate, now) {
		return []types.TimeString{}, nil
	}

	if !workingHours.IsOpen || workingHours.OpenTime == nil || workingHours.CloseTime == nil {
		return []types.TimeString{}, nil
	}

	openTime, err := types.NewTimeStringFromString(*workingHours.OpenTime)
	if err != nil {
		return nil, err
	}

	closeTime, err := types.NewTimeStringFromString(*workingHours.CloseTime)
	if err != nil {
		return nil, err
	}

	// Шаг 1: все кандидаты от открытия до закрытия с шагом granularity
	allStarts := make([]types.TimeString, 0)
	current := openTime

	for current.IsBefore(closeTime) {
		slotEnd, err := current.AddMinutes(durationMinutes)
		if err != nil {
			// Конец слота за полночь — дальше будет только хуже
			break
		}
		if slotEnd.IsAfter(closeTime) {
			break
		}

		allStarts = append(allStarts, current)

		current, err = current.AddMinutes(granularityMinutes)
		if err != nil {
			break
		}
	}

	// Шаг 2: если дата не сегодня — все кандидаты годятся
	if !isSameDay(requestDate, now) {
		return allStarts, nil
	}

	// Шаг 3: для сегодняшней даты фильтруем по минимальному времени до брони
	currentTime := types.NewTimeString(now)
	minAllowedTime, err := currentTime.AddMinutes(minBookingNoticeMinutes)
	if err != nil {
		// now + notice за полночь: сегодня уже ничего не забронировать
		return []types.TimeString{}, nil
	}

	available := make([]types.TimeString, 0, len(allStarts))
	for _, start := range allStarts {
		if !start.IsBefore(minAllowedTime) {
			available = append(available, start)
		}
	}

	return available, nil
}

// buildGrid строит сетку слотов по кандидатам и занятым интервалам ресурсов.
//
// Для каждого слота и каждого ресурса свободные места считаются как
// capacity - пиковая занятость внутри интервала слота; слот доступен,
// если хотя бы у одного ресурса остались места ("any"-семантика union).
// Для конкретного ресурса ресурс в списке один, и семантика вырождается
// в обычную проверку вместимости.
func buildGrid(
	starts []types.TimeString,
	durationMinutes int,
	resources []domain.Resource,
	occupiedByResource map[int64][]domain.Interval,
) []domain.TimeSlot {
	totalSpots := 0
	for _, res := range resources {
		totalSpots += res.Capacity()
	}

	grid := make([]domain.TimeSlot, 0, len(starts))

	for _, start := range starts {
		slotInterval, err := domain.NewInterval(start, durationMinutes)
		if err != nil {
			continue
		}

		available := 0
		for _, res := range resources {
			occupied := occupiedByResource[res.KeyID()]
			spots := res.Capacity() - domain.MaxOccupancyWithin(slotInterval, occupied)
			if spots > 0 {
				available += spots
			}
		}

		grid = append(grid, domain.TimeSlot{
			StartTime:       start,
			DurationMinutes: durationMinutes,
			AvailableSpots:  available,
			TotalSpots:      totalSpots,
		})
	}

	return grid
}
