package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/internal/infra/cache/availability"
	configRepo "github.com/avenirbook/scheduling-engine/internal/infra/storage/scheduleconfig"
	directoryClient "github.com/avenirbook/scheduling-engine/internal/integrations/directory"
)

// UseCase use case для получения доступных слотов.
// Чисто читающий путь: никаких блокировок, может выполняться параллельно
// с любыми бронированиями — результат информирует пользователя, а не
// резервирует слот.
type UseCase struct {
	apptRepo     AppointmentRepository
	configRepo   ConfigRepository
	directory    DirectoryClient
	cache        SlotsCache
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// cache может быть nil — тогда сетка считается на каждый запрос.
func NewUseCase(
	apptRepo AppointmentRepository,
	configRepo ConfigRepository,
	directory DirectoryClient,
	cache SlotsCache,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:     apptRepo,
		configRepo:   configRepo,
		directory:    directory,
		cache:        cache,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: actor=%d, business=%d, service=%d, selector=%s, date=%s",
		req.ActorID, req.BusinessID, req.ServiceID, req.selectorKey(), req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бизнес
	business, err := uc.directory.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrBusinessNotFound) {
			uc.logger.Warn("GetAvailableSlots: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}
	if !business.IsActive {
		// Деактивированный бизнес неотличим от несуществующего
		uc.logger.Warn("GetAvailableSlots: business id=%d is deactivated", req.BusinessID)
		return nil, ErrBusinessNotFound
	}

	// 3. Текущее время в таймзоне бизнеса — все сравнения "сейчас/прошлое"
	// делаются в ней
	now, err := uc.nowInBusinessTimezone(business)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: invalid timezone %q for business id=%d: %v",
			business.Timezone, req.BusinessID, err)
		return nil, fmt.Errorf("%w: invalid business timezone: %v", ErrInternal, err)
	}

	// 4. Получаем услугу и определяем длительность слота
	service, err := uc.directory.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("GetAvailableSlots: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	duration := service.DurationMinutes
	if req.DurationOverrideMinutes != nil {
		duration = *req.DurationOverrideMinutes
	}

	// 5. Разрешаем селектор в список ресурсов
	resources, configResourceID, err := uc.resolveResources(ctx, req)
	if err != nil {
		return nil, err
	}

	// 6. Конфигурация расписания с учетом иерархии
	config, err := uc.configRepo.GetConfigWithHierarchy(ctx, req.BusinessID, configResourceID)
	if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get config: %v", err)
		return nil, fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
	}
	if config == nil {
		config = domain.DefaultScheduleConfig()
		uc.logger.Info("GetAvailableSlots: using default config for business=%d", req.BusinessID)
	}

	// 7. Валидация даты с учетом конфигурации
	if err := validateDate(req.Date, now, config.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 8. Рабочие часы на указанную дату; закрыто — пустая сетка
	workingHours := business.Hours.ForWeekday(int(req.Date.Weekday()))
	if !workingHours.IsOpen {
		uc.logger.Info("GetAvailableSlots: business id=%d is closed on %s",
			req.BusinessID, req.Date.Format(domain.DateFormat))
		return uc.response(req, []domain.TimeSlot{}), nil
	}

	// 9. Пробуем кэш (advisory: не источник истины, просто дешевле)
	cacheKey := availability.Key{
		BusinessID:      req.BusinessID,
		Date:            req.Date,
		Selector:        req.selectorKey(),
		ServiceID:       req.ServiceID,
		DurationMinutes: duration,
	}
	if uc.cache != nil {
		if slots, err := uc.cache.Get(ctx, cacheKey); err == nil {
			uc.logger.Info("GetAvailableSlots: cache hit for business=%d date=%s selector=%s",
				req.BusinessID, req.Date.Format(domain.DateFormat), req.selectorKey())
			return uc.response(req, slots), nil
		}
	}

	// 10. Генерируем кандидатов начала слота
	starts, err := generateStartTimes(
		workingHours,
		config.SlotGranularityMinutes,
		duration,
		req.Date,
		now,
		config.MinBookingNoticeMinutes,
	)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slot starts: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slot starts: %v", ErrInternal, err)
	}

	// 11. Загружаем занятые интервалы каждого ресурса на дату
	occupiedByResource := make(map[int64][]domain.Interval, len(resources))
	for _, res := range resources {
		appointments, err := uc.apptRepo.GetOccupyingByResourceDay(
			ctx, req.BusinessID, res.Type, res.StorageID(), req.Date, nil)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to get appointments for resource %s:%d: %v",
				res.Type, res.KeyID(), err)
			return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}
		occupiedByResource[res.KeyID()] = domain.OccupiedIntervals(appointments)
	}

	// 12. Строим сетку
	slots := buildGrid(starts, duration, resources, occupiedByResource)

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, cacheKey, slots); err != nil {
			// Кэш best effort
			uc.logger.Warn("GetAvailableSlots: failed to cache slots: %v", err)
		}
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots for business=%d, selector=%s, date=%s",
		len(slots), req.BusinessID, req.selectorKey(), req.Date.Format(domain.DateFormat))

	return uc.response(req, slots), nil
}

// resolveResources разрешает селектор запроса в список bookable-ресурсов.
// Вторым значением возвращает resource_id для иерархии конфигурации
// (nil для "any" и whole-business режимов).
func (uc *UseCase) resolveResources(ctx context.Context, req *Request) ([]domain.Resource, *int64, error) {
	switch {
	case req.StaffID != nil:
		staff, err := uc.directory.GetStaffMember(ctx, req.BusinessID, *req.StaffID)
		if err != nil {
			if errors.Is(err, directoryClient.ErrResourceNotFound) {
				uc.logger.Warn("GetAvailableSlots: staff id=%d not found", *req.StaffID)
				return nil, nil, ErrResourceNotFound
			}
			return nil, nil, fmt.Errorf("%w: failed to get staff member: %v", ErrInternal, err)
		}
		res := staff.Resource()
		if !res.IsBookable() {
			return nil, nil, ErrResourceNotFound
		}
		return []domain.Resource{res}, req.StaffID, nil

	case req.ServicePointID != nil:
		point, err := uc.directory.GetServicePoint(ctx, req.BusinessID, *req.ServicePointID)
		if err != nil {
			if errors.Is(err, directoryClient.ErrResourceNotFound) {
				uc.logger.Warn("GetAvailableSlots: service point id=%d not found", *req.ServicePointID)
				return nil, nil, ErrResourceNotFound
			}
			return nil, nil, fmt.Errorf("%w: failed to get service point: %v", ErrInternal, err)
		}
		res := point.Resource()
		if !res.IsBookable() {
			return nil, nil, ErrResourceNotFound
		}
		return []domain.Resource{res}, req.ServicePointID, nil

	case req.AnyOfType != nil && *req.AnyOfType == domain.ResourceStaff:
		staff, err := uc.directory.ListStaff(ctx, req.BusinessID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: failed to list staff: %v", ErrInternal, err)
		}
		resources := make([]domain.Resource, 0, len(staff))
		for _, s := range staff {
			// Неактивные ресурсы исключаются целиком, а не показываются занятыми
			if res := s.Resource(); res.IsBookable() {
				resources = append(resources, res)
			}
		}
		return resources, nil, nil

	case req.AnyOfType != nil && *req.AnyOfType == domain.ResourceServicePoint:
		points, err := uc.directory.ListServicePoints(ctx, req.BusinessID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: failed to list service points: %v", ErrInternal, err)
		}
		resources := make([]domain.Resource, 0, len(points))
		for _, p := range points {
			if res := p.Resource(); res.IsBookable() {
				resources = append(resources, res)
			}
		}
		return resources, nil, nil

	default:
		// Legacy/simple режим: весь бизнес как один ресурс вместимостью 1
		return []domain.Resource{domain.BusinessResource()}, nil, nil
	}
}

func (uc *UseCase) nowInBusinessTimezone(business *directoryClient.Business) (time.Time, error) {
	loc, err := time.LoadLocation(business.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	return uc.timeProvider.Now().In(loc), nil
}

func (uc *UseCase) response(req *Request, slots []domain.TimeSlot) *Response {
	return &Response{
		Date:       req.Date,
		BusinessID: req.BusinessID,
		ServiceID:  req.ServiceID,
		Selector:   req.selectorKey(),
		Slots:      slots,
	}
}
