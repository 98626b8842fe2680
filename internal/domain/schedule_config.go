package domain

import "time"

// ScheduleConfig represents the booking configuration for a business.
// Supports hierarchical configuration:
// 1. Resource-specific (business_id, resource_id)
// 2. Business-wide (business_id, NULL)
type ScheduleConfig struct {
	ID         int64
	BusinessID int64
	ResourceID *int64 // NULL = config for all resources

	SlotGranularityMinutes  int // шаг сетки кандидатов начала слота
	AdvanceBookingDays      int // 0 = без ограничения
	MinBookingNoticeMinutes int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBusinessWide returns true if this config applies to all resources
func (c *ScheduleConfig) IsBusinessWide() bool {
	return c.ResourceID == nil
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in
// advance bookings can be made
func (c *ScheduleConfig) HasAdvanceBookingLimit() bool {
	return c.AdvanceBookingDays > 0
}

// DefaultScheduleConfig возвращает конфигурацию по умолчанию,
// используемую когда для бизнеса не настроено ни одной строки
func DefaultScheduleConfig() *ScheduleConfig {
	return &ScheduleConfig{
		SlotGranularityMinutes:  DefaultSlotGranularityMinutes,
		AdvanceBookingDays:      DefaultAdvanceBookingDays,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
	}
}
