package domain

// ResourceType тип ресурса, на котором контендятся записи
type ResourceType string

const (
	// ResourceStaff сотрудник: один человек делает одно дело за раз
	ResourceStaff ResourceType = "staff"

	// ResourceServicePoint точка обслуживания с настраиваемой вместимостью
	// (например, кресло в салоне, бокс на мойке)
	ResourceServicePoint ResourceType = "service_point"

	// ResourceBusiness весь бизнес как один ресурс вместимостью 1
	// (legacy/simple режим, когда ресурс в заявке не указан)
	ResourceBusiness ResourceType = "business"
)

// Resource is the capacity-bearing entity an appointment occupies.
// Modeled as a tagged variant with a single capacity accessor so that
// capacity=1 never needs special-casing in the availability and conflict
// paths.
type Resource struct {
	Type ResourceType
	ID   int64 // 0 for the whole-business fallback
	Name string

	// MaxConcurrentSlots applies to service points only
	MaxConcurrentSlots int

	IsActive bool
}

// StaffResource создает ресурс-сотрудника (вместимость 1)
func StaffResource(id int64, name string) Resource {
	return Resource{Type: ResourceStaff, ID: id, Name: name, IsActive: true}
}

// ServicePointResource создает точку обслуживания с заданной вместимостью
func ServicePointResource(id int64, name string, maxConcurrentSlots int) Resource {
	return Resource{
		Type:               ResourceServicePoint,
		ID:                 id,
		Name:               name,
		MaxConcurrentSlots: maxConcurrentSlots,
		IsActive:           true,
	}
}

// BusinessResource создает ресурс-заглушку "весь бизнес" (вместимость 1)
func BusinessResource() Resource {
	return Resource{Type: ResourceBusiness, ID: 0, IsActive: true}
}

// Capacity returns the maximum number of simultaneous occupying appointments
func (r Resource) Capacity() int {
	if r.Type == ResourceServicePoint {
		if r.MaxConcurrentSlots < MinConcurrentSlots {
			return MinConcurrentSlots
		}
		return r.MaxConcurrentSlots
	}
	return 1
}

// IsBookable returns true if the resource can accept appointments at all.
// Inactive resources are excluded from availability entirely, not shown
// as "unavailable".
func (r Resource) IsBookable() bool {
	return r.IsActive && r.Capacity() >= MinConcurrentSlots
}

// KeyID returns the resource id used in lock keys and storage
// (0 for the whole-business fallback)
func (r Resource) KeyID() int64 {
	if r.Type == ResourceBusiness {
		return 0
	}
	return r.ID
}

// StorageID returns the resource id as stored on the appointment row
// (nil for the whole-business fallback)
func (r Resource) StorageID() *int64 {
	if r.Type == ResourceBusiness {
		return nil
	}
	id := r.ID
	return &id
}
