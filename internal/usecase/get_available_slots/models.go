package get_available_slots

import (
	"fmt"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ActorID    int64     // ID пользователя (для логирования, не влияет на результат)
	BusinessID int64     // ID бизнеса
	ServiceID  int64     // ID услуги (определяет длительность)
	Date       time.Time // Дата, на которую запрашиваются слоты (без времени)

	// Селектор ресурса: конкретный сотрудник, конкретная точка обслуживания,
	// "любой ресурс типа" или (если все пусто) весь бизнес как один ресурс
	StaffID        *int64
	ServicePointID *int64
	AnyOfType      *domain.ResourceType

	// DurationOverrideMinutes переопределяет длительность услуги (опционально)
	DurationOverrideMinutes *int
}

// selectorKey строковое представление селектора для ключа кэша и логов
func (r *Request) selectorKey() string {
	switch {
	case r.StaffID != nil:
		return fmt.Sprintf("staff:%d", *r.StaffID)
	case r.ServicePointID != nil:
		return fmt.Sprintf("sp:%d", *r.ServicePointID)
	case r.AnyOfType != nil:
		return fmt.Sprintf("any:%s", *r.AnyOfType)
	default:
		return "business"
	}
}

// Response модель ответа с сеткой слотов.
// Сетка возвращается целиком, включая занятые слоты — UI рендерит grid,
// фильтрация по доступности остается за вызывающим.
type Response struct {
	Date       time.Time
	BusinessID int64
	ServiceID  int64
	Selector   string
	Slots      []domain.TimeSlot
}
