package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// minutesPerDay граница суток: слот не может пересекать полночь
const minutesPerDay = 24 * 60

var (
	// ErrInvalidTimeString возвращается при некорректном формате времени
	ErrInvalidTimeString = errors.New("types: invalid time string format, expected HH:MM")

	// ErrCrossesMidnight возвращается, когда арифметика времени выходит за границу суток
	ErrCrossesMidnight = errors.New("types: time arithmetic crosses midnight")
)

// TimeString время в пределах одних суток в формате "HH:MM" (например, "10:30").
// Используется для времени начала слотов и рабочих часов.
// Хранится в PostgreSQL в колонке типа TIME.
type TimeString string

// NewTimeString создает TimeString из time.Time (берёт только часы и минуты)
func NewTimeString(t time.Time) TimeString {
	return TimeString(fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute()))
}

// NewTimeStringFromString парсит строку "HH:MM" в TimeString.
// Специальное значение "24:00" допустимо как конец интервала (конец суток).
func NewTimeStringFromString(s string) (TimeString, error) {
	if s == "24:00" {
		return TimeString(s), nil
	}

	var hours, minutes int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &hours, &minutes); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}

	return TimeString(fmt.Sprintf("%02d:%02d", hours, minutes)), nil
}

// NewTimeStringFromMinutes создает TimeString из количества минут с начала суток
func NewTimeStringFromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes > minutesPerDay {
		return "", ErrCrossesMidnight
	}
	return TimeString(fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)), nil
}

// Minutes возвращает количество минут с начала суток
func (t TimeString) Minutes() int {
	var hours, minutes int
	fmt.Sscanf(string(t), "%02d:%02d", &hours, &minutes)
	return hours*60 + minutes
}

// IsBefore возвращает true, если t строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.Minutes() < other.Minutes()
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.Minutes() > other.Minutes()
}

// Equal возвращает true, если моменты совпадают
func (t TimeString) Equal(other TimeString) bool {
	return t.Minutes() == other.Minutes()
}

// AddMinutes возвращает TimeString, сдвинутый на mins минут вперед.
// Возвращает ErrCrossesMidnight, если результат выходит за границу суток.
func (t TimeString) AddMinutes(mins int) (TimeString, error) {
	total := t.Minutes() + mins
	if mins < 0 || total > minutesPerDay {
		return "", fmt.Errorf("%w: %s + %d min", ErrCrossesMidnight, t, mins)
	}
	return NewTimeStringFromMinutes(total)
}

// String возвращает строковое представление "HH:MM"
func (t TimeString) String() string {
	return string(t)
}

// Value реализует driver.Valuer для записи в колонку TIME
func (t TimeString) Value() (driver.Value, error) {
	return string(t), nil
}

// Scan реализует sql.Scanner для чтения из колонки TIME.
// PostgreSQL возвращает TIME как "15:04:05" — секунды отбрасываются.
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return t.scanString(v)
	case []byte:
		return t.scanString(string(v))
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported source type %T", ErrInvalidTimeString, src)
	}
}

func (t *TimeString) scanString(s string) error {
	if len(s) >= 5 {
		s = s[:5]
	}
	parsed, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
