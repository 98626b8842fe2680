package get_business_appointments

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/internal/service/appointments/models"
)

// parseQuery собирает запрос сервиса из query-параметров.
// Поддерживаются: resourceType, resourceId, startDate, endDate, status,
// includeInactive.
func parseQuery(values url.Values, businessID, actorID int64) (*models.GetBusinessAppointmentsRequest, error) {
	req := &models.GetBusinessAppointmentsRequest{
		ActorID:    actorID,
		BusinessID: businessID,
	}

	if raw := values.Get("resourceType"); raw != "" {
		req.ResourceType = &raw
	}

	if raw := values.Get("resourceId"); raw != "" {
		resourceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || resourceID <= 0 {
			return nil, fmt.Errorf("invalid resourceId: %q", raw)
		}
		req.ResourceID = &resourceID
	}

	if raw := values.Get("startDate"); raw != "" {
		startDate, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid startDate: %q", raw)
		}
		req.StartDate = &startDate
	}

	if raw := values.Get("endDate"); raw != "" {
		endDate, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid endDate: %q", raw)
		}
		req.EndDate = &endDate
	}

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("endDate is before startDate")
	}

	if raw := values.Get("status"); raw != "" {
		req.Status = &raw
	}

	if raw := values.Get("includeInactive"); raw != "" {
		includeInactive, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive: %q", raw)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
