package get_available_slots

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	getAvailableSlots "github.com/avenirbook/scheduling-engine/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date       string          `json:"date"`
	BusinessID int64           `json:"businessId"`
	ServiceID  int64           `json:"serviceId"`
	Selector   string          `json:"selector"`
	Slots      []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	AvailableSpots  int    `json:"availableSpots"`
	TotalSpots      int    `json:"totalSpots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartTime:       slot.StartTime.String(),
			DurationMinutes: slot.DurationMinutes,
			AvailableSpots:  slot.AvailableSpots,
			TotalSpots:      slot.TotalSpots,
		}
	}

	return &AvailableSlotsResponse{
		Date:       resp.Date.Format(domain.DateFormat),
		BusinessID: resp.BusinessID,
		ServiceID:  resp.ServiceID,
		Selector:   resp.Selector,
		Slots:      slots,
	}
}

// ToUseCaseRequest создает запрос use case из path и query параметров.
// Query params: serviceId (обязателен), date (обязателен, YYYY-MM-DD),
// staffId | servicePointId | anyOf (не более одного), duration (опционально).
func ToUseCaseRequest(businessID int64, values url.Values) (*getAvailableSlots.Request, error) {
	serviceID, err := strconv.ParseInt(values.Get("serviceId"), 10, 64)
	if err != nil || serviceID <= 0 {
		return nil, fmt.Errorf("invalid serviceId: %q", values.Get("serviceId"))
	}

	date, err := time.Parse(domain.DateFormat, values.Get("date"))
	if err != nil {
		return nil, fmt.Errorf("invalid date: %q", values.Get("date"))
	}

	req := &getAvailableSlots.Request{
		BusinessID: businessID,
		ServiceID:  serviceID,
		Date:       date,
	}

	if raw := values.Get("staffId"); raw != "" {
		staffID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || staffID <= 0 {
			return nil, fmt.Errorf("invalid staffId: %q", raw)
		}
		req.StaffID = &staffID
	}

	if raw := values.Get("servicePointId"); raw != "" {
		servicePointID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || servicePointID <= 0 {
			return nil, fmt.Errorf("invalid servicePointId: %q", raw)
		}
		req.ServicePointID = &servicePointID
	}

	if raw := values.Get("anyOf"); raw != "" {
		resourceType := domain.ResourceType(raw)
		req.AnyOfType = &resourceType
	}

	if raw := values.Get("duration"); raw != "" {
		duration, err := strconv.Atoi(raw)
		if err != nil || duration <= 0 {
			return nil, fmt.Errorf("invalid duration: %q", raw)
		}
		req.DurationOverrideMinutes = &duration
	}

	return req, nil
}
