package directory

import "github.com/avenirbook/scheduling-engine/internal/domain"

// Business модель бизнеса из DirectoryService
type Business struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Timezone   string       `json:"timezone"` // IANA, например "Europe/Moscow"
	IsActive   bool         `json:"is_active"`
	OwnerID    int64        `json:"owner_id"`
	ManagerIDs []int64      `json:"manager_ids"`
	Hours      WeekSchedule `json:"working_hours"`
}

// IsManagedBy возвращает true, если пользователь — владелец или менеджер бизнеса
func (b *Business) IsManagedBy(userID int64) bool {
	if b.OwnerID == userID {
		return true
	}
	for _, id := range b.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// WeekSchedule расписание работы по дням недели
type WeekSchedule struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// ForWeekday возвращает расписание работы на указанный день недели
func (w WeekSchedule) ForWeekday(weekday int) DaySchedule {
	switch weekday {
	case 1:
		return w.Monday
	case 2:
		return w.Tuesday
	case 3:
		return w.Wednesday
	case 4:
		return w.Thursday
	case 5:
		return w.Friday
	case 6:
		return w.Saturday
	case 0:
		return w.Sunday
	default:
		return DaySchedule{IsOpen: false}
	}
}

// DaySchedule рабочие часы одного дня недели
type DaySchedule struct {
	IsOpen    bool    `json:"is_open"`
	OpenTime  *string `json:"open_time,omitempty"`  // "09:00"
	CloseTime *string `json:"close_time,omitempty"` // "17:00"
}

// Service модель услуги из DirectoryService
type Service struct {
	ID              int64  `json:"id"`
	BusinessID      int64  `json:"business_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	IsActive        bool   `json:"is_active"`
}

// StaffMember модель сотрудника из DirectoryService
type StaffMember struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// ServicePoint модель точки обслуживания из DirectoryService
type ServicePoint struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	MaxConcurrentSlots int    `json:"max_concurrent_slots"`
	IsActive           bool   `json:"is_active"`
}

// Resource конвертирует сотрудника в доменный ресурс
func (s StaffMember) Resource() domain.Resource {
	r := domain.StaffResource(s.ID, s.Name)
	r.IsActive = s.IsActive
	return r
}

// Resource конвертирует точку обслуживания в доменный ресурс
func (p ServicePoint) Resource() domain.Resource {
	r := domain.ServicePointResource(p.ID, p.Name, p.MaxConcurrentSlots)
	r.IsActive = p.IsActive
	return r
}

// ErrorResponse модель ошибки от DirectoryService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
