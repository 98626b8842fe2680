package domain

// Default configuration values
const (
	DefaultSlotGranularityMinutes  = 15
	DefaultAdvanceBookingDays      = 0  // 0 = unlimited
	DefaultMinBookingNoticeMinutes = 60 // 1 hour
)

// Business validation constants
const (
	MinSlotGranularityMinutes = 5
	MaxSlotGranularityMinutes = 240 // 4 hours
	MinServiceDurationMinutes = 5
	MaxServiceDurationMinutes = 480 // 8 hours
	MinConcurrentSlots        = 1
	MaxConcurrentSlots        = 100
	MinAdvanceBookingDays     = 0
	MaxAdvanceBookingDays     = 365 // 1 year
	MinNoticeMinutes          = 0
	MaxNoticeMinutes          = 10080 // 1 week
	MaxNotesLength            = 500
	MaxReasonLength           = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов, не занимающих вместимость ресурса.
// Используется для фильтрации при подсчёте доступных слотов.
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusNoShow,
}

// OccupyingStatuses список статусов, занимающих вместимость ресурса
var OccupyingStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
}

// ValidStatuses все допустимые статусы записи
var ValidStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}
