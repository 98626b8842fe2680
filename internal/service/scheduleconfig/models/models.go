package models

import (
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
)

// Request модели

// UpdateConfigRequest запрос на создание или обновление конфигурации расписания
type UpdateConfigRequest struct {
	ActorID    int64  `json:"actorId"`
	BusinessID int64  `json:"businessId"`
	ResourceID *int64 `json:"resourceId,omitempty"` // nil = конфигурация всего бизнеса

	SlotGranularityMinutes  int `json:"slotGranularityMinutes"`
	AdvanceBookingDays      int `json:"advanceBookingDays"`
	MinBookingNoticeMinutes int `json:"minBookingNoticeMinutes"`
}

// ToDomainConfig конвертирует request в domain модель
func (r *UpdateConfigRequest) ToDomainConfig() *domain.ScheduleConfig {
	return &domain.ScheduleConfig{
		BusinessID:              r.BusinessID,
		ResourceID:              r.ResourceID,
		SlotGranularityMinutes:  r.SlotGranularityMinutes,
		AdvanceBookingDays:      r.AdvanceBookingDays,
		MinBookingNoticeMinutes: r.MinBookingNoticeMinutes,
	}
}

// GetConfigRequest запрос на получение действующей конфигурации
type GetConfigRequest struct {
	BusinessID int64  `json:"businessId"`
	ResourceID *int64 `json:"resourceId,omitempty"`
}

// Response модели

// ConfigResponse ответ с конфигурацией расписания
type ConfigResponse struct {
	ID         int64  `json:"id,omitempty"` // 0 = конфигурация по умолчанию, не хранится
	BusinessID int64  `json:"businessId"`
	ResourceID *int64 `json:"resourceId,omitempty"`

	SlotGranularityMinutes  int `json:"slotGranularityMinutes"`
	AdvanceBookingDays      int `json:"advanceBookingDays"`
	MinBookingNoticeMinutes int `json:"minBookingNoticeMinutes"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ConfigListResponse ответ со списком конфигураций бизнеса
type ConfigListResponse struct {
	Configs []ConfigResponse `json:"configs"`
}

// Методы конвертации

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.ScheduleConfig) *ConfigResponse {
	if c == nil {
		return nil
	}

	resp := &ConfigResponse{
		ID:                      c.ID,
		BusinessID:              c.BusinessID,
		ResourceID:              c.ResourceID,
		SlotGranularityMinutes:  c.SlotGranularityMinutes,
		AdvanceBookingDays:      c.AdvanceBookingDays,
		MinBookingNoticeMinutes: c.MinBookingNoticeMinutes,
	}

	if !c.CreatedAt.IsZero() {
		createdAt := c.CreatedAt
		resp.CreatedAt = &createdAt
	}
	if !c.UpdatedAt.IsZero() {
		updatedAt := c.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}

	return resp
}

// FromDomainConfigList конвертирует список domain моделей в DTO
func FromDomainConfigList(configs []*domain.ScheduleConfig) *ConfigListResponse {
	if configs == nil {
		return &ConfigListResponse{
			Configs: []ConfigResponse{},
		}
	}

	resp := &ConfigListResponse{
		Configs: make([]ConfigResponse, len(configs)),
	}

	for i, config := range configs {
		if configResp := FromDomainConfig(config); configResp != nil {
			resp.Configs[i] = *configResp
		}
	}

	return resp
}
