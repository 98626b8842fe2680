package models

import (
	"errors"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// CancelAppointmentRequest запрос на отмену записи
type CancelAppointmentRequest struct {
	ActorID            int64  `json:"actorId"`
	CancellationReason string `json:"cancellationReason"`
}

// UpdateStatusRequest запрос на обновление статуса записи
type UpdateStatusRequest struct {
	ActorID int64  `json:"actorId"`
	Status  string `json:"status"`
}

// GetCustomerAppointmentsRequest запрос на получение записей клиента
type GetCustomerAppointmentsRequest struct {
	ActorID     int64   `json:"actorId"`
	CustomerRef string  `json:"customerRef"`
	Status      *string `json:"status,omitempty"`
}

// GetBusinessAppointmentsRequest запрос на получение записей бизнеса
type GetBusinessAppointmentsRequest struct {
	ActorID         int64      `json:"actorId"`
	BusinessID      int64      `json:"businessId"`
	ResourceType    *string    `json:"resourceType,omitempty"`    // Фильтр по типу ресурса (опционально)
	ResourceID      *int64     `json:"resourceId,omitempty"`      // Фильтр по ресурсу (опционально)
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отменённые и no-show записи
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetBusinessAppointmentsRequest) ToDomainFilter() (domain.BusinessAppointmentsFilter, error) {
	filter := domain.BusinessAppointmentsFilter{
		BusinessID:      r.BusinessID,
		ResourceID:      r.ResourceID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.ResourceType != nil {
		rt := domain.ResourceType(*r.ResourceType)
		if rt != domain.ResourceStaff && rt != domain.ResourceServicePoint && rt != domain.ResourceBusiness {
			return filter, ErrInvalidStatus
		}
		filter.ResourceType = &rt
	}

	if r.Status != nil {
		status, err := ToDomainAppointmentStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64  `json:"id"`
	BusinessID      int64  `json:"businessId"`
	ServiceID       int64  `json:"serviceId"`
	ResourceType    string `json:"resourceType"`
	ResourceID      *int64 `json:"resourceId,omitempty"`
	CustomerRef     string `json:"customerRef"`
	Date            string `json:"date"`      // "2026-03-15"
	StartTime       string `json:"startTime"` // "10:00"
	EndTime         string `json:"endTime"`   // "11:00", конец полуоткрытого интервала
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`

	// Денормализованные данные
	ServiceName string  `json:"serviceName"`
	Notes       *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// ModificationResponse одна строка журнала изменений записи
type ModificationResponse struct {
	ID            int64  `json:"id"`
	AppointmentID int64  `json:"appointmentId"`
	Type          string `json:"type"`

	OldDate            string `json:"oldDate"`
	OldStartTime       string `json:"oldStartTime"`
	OldDurationMinutes int    `json:"oldDurationMinutes"`

	NewDate            *string `json:"newDate,omitempty"`
	NewStartTime       *string `json:"newStartTime,omitempty"`
	NewDurationMinutes *int    `json:"newDurationMinutes,omitempty"`

	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`

	Reason  string `json:"reason,omitempty"`
	ActorID int64  `json:"actorId"`

	CreatedAt time.Time `json:"createdAt"`
}

// ModificationListResponse журнал изменений записи (в порядке добавления)
type ModificationListResponse struct {
	Modifications []ModificationResponse `json:"modifications"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                 a.ID,
		BusinessID:         a.BusinessID,
		ServiceID:          a.ServiceID,
		ResourceType:       string(a.ResourceType),
		ResourceID:         a.ResourceID,
		CustomerRef:        a.CustomerRef,
		Date:               a.Date.Format(domain.DateFormat),
		StartTime:          a.StartTime.String(),
		DurationMinutes:    a.DurationMinutes,
		Status:             string(a.Status),
		ServiceName:        a.ServiceName,
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if end, err := a.EndTime(); err == nil {
		resp.EndTime = end.String()
	}

	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	if appointments == nil {
		return &AppointmentListResponse{
			Appointments: []AppointmentResponse{},
		}
	}

	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, len(appointments)),
	}

	for i, appt := range appointments {
		if apptResp := FromDomainAppointment(appt); apptResp != nil {
			resp.Appointments[i] = *apptResp
		}
	}

	return resp
}

// FromDomainModification конвертирует строку журнала в DTO
func FromDomainModification(m *domain.ModificationRecord) *ModificationResponse {
	if m == nil {
		return nil
	}

	resp := &ModificationResponse{
		ID:                 m.ID,
		AppointmentID:      m.AppointmentID,
		Type:               string(m.Type),
		OldDate:            m.OldDate.Format(domain.DateFormat),
		OldStartTime:       m.OldStartTime.String(),
		OldDurationMinutes: m.OldDurationMinutes,
		OldStatus:          string(m.OldStatus),
		NewStatus:          string(m.NewStatus),
		Reason:             m.Reason,
		ActorID:            m.ActorID,
		CreatedAt:          m.CreatedAt,
	}

	if m.NewDate != nil {
		newDate := m.NewDate.Format(domain.DateFormat)
		resp.NewDate = &newDate
	}
	if m.NewStartTime != nil {
		newStart := m.NewStartTime.String()
		resp.NewStartTime = &newStart
	}
	resp.NewDurationMinutes = m.NewDurationMinutes

	return resp
}

// FromDomainModificationList конвертирует журнал изменений в DTO
func FromDomainModificationList(records []*domain.ModificationRecord) *ModificationListResponse {
	if records == nil {
		return &ModificationListResponse{
			Modifications: []ModificationResponse{},
		}
	}

	resp := &ModificationListResponse{
		Modifications: make([]ModificationResponse, len(records)),
	}

	for i, record := range records {
		if recordResp := FromDomainModification(record); recordResp != nil {
			resp.Modifications[i] = *recordResp
		}
	}

	return resp
}

// ToDomainAppointmentStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainAppointmentStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)

	for _, valid := range domain.ValidStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
