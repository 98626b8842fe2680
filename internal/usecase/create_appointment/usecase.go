package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/internal/infra/events"
	configRepo "github.com/avenirbook/scheduling-engine/internal/infra/storage/scheduleconfig"
	"github.com/avenirbook/scheduling-engine/internal/integrations/directory"
	"github.com/avenirbook/scheduling-engine/internal/service/conflicts"
	"github.com/avenirbook/scheduling-engine/pkg/txmanager"
)

// UseCase use case для создания записи.
//
// Проверка конфликта и вставка выполняются в одной сериализуемой
// транзакции под advisory lock дня ресурса: из N конкурентных запросов
// на последнее место ровно один коммитит запись, остальные получают
// ErrSlotNotAvailable. Никакого окна между проверкой и вставкой нет.
type UseCase struct {
	apptRepo     AppointmentRepository
	configRepo   ConfigRepository
	detector     ConflictDetector
	directory    DirectoryClient
	txManager    TransactionManager
	cache        SlotsCache
	publisher    EventPublisher
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// cache и publisher могут быть nil — бронирование работает без них.
func NewUseCase(
	apptRepo AppointmentRepository,
	configRepo ConfigRepository,
	detector ConflictDetector,
	directory DirectoryClient,
	txManager TransactionManager,
	cache SlotsCache,
	publisher EventPublisher,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:     apptRepo,
		configRepo:   configRepo,
		detector:     detector,
		directory:    directory,
		txManager:    txManager,
		cache:        cache,
		publisher:    publisher,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: actor=%d, business=%d, service=%d, date=%s, start=%s",
		req.ActorID, req.BusinessID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бизнес
	business, err := uc.directory.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, directory.ErrBusinessNotFound) {
			uc.logger.Warn("CreateAppointment: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}
	if !business.IsActive {
		uc.logger.Warn("CreateAppointment: business id=%d is deactivated", req.BusinessID)
		return nil, ErrBusinessNotFound
	}

	// 3. Текущее время в таймзоне бизнеса
	loc, err := time.LoadLocation(business.Timezone)
	if err != nil {
		uc.logger.Error("CreateAppointment: invalid timezone %q for business id=%d: %v",
			business.Timezone, req.BusinessID, err)
		return nil, fmt.Errorf("%w: invalid business timezone: %v", ErrInternal, err)
	}
	now := uc.timeProvider.Now().In(loc)

	// 4. Получаем услугу: длительность снимается в момент создания
	service, err := uc.directory.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, directory.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("CreateAppointment: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 5. Разрешаем ресурс
	resource, configResourceID, err := uc.resolveResource(ctx, req)
	if err != nil {
		return nil, err
	}

	// 6. Конфигурация расписания с учетом иерархии
	config, err := uc.configRepo.GetConfigWithHierarchy(ctx, req.BusinessID, configResourceID)
	if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
		uc.logger.Error("CreateAppointment: failed to get config: %v", err)
		return nil, fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
	}
	if config == nil {
		config = domain.DefaultScheduleConfig()
	}

	// 7. Валидация даты и слота
	if err := validateDate(req.Date, now, config.AdvanceBookingDays); err != nil {
		uc.logger.Warn("CreateAppointment: date validation failed: %v", err)
		return nil, err
	}

	workingHours := business.Hours.ForWeekday(int(req.Date.Weekday()))
	if err := validateSlot(
		workingHours,
		req.StartTime,
		service.DurationMinutes,
		config.SlotGranularityMinutes,
		req.Date,
		now,
		config.MinBookingNoticeMinutes,
	); err != nil {
		uc.logger.Warn("CreateAppointment: slot validation failed: %v", err)
		return nil, err
	}

	candidate := slotCandidate{
		resource:  resource,
		date:      req.Date,
		startTime: req.StartTime,
		duration:  service.DurationMinutes,
	}

	// 8. Проверка конфликта и вставка — атомарно, под локом дня ресурса
	var created *domain.Appointment
	err = uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := uc.apptRepo.LockResourceDay(ctx, req.BusinessID, candidate.resource.KeyID(), candidate.date); err != nil {
			return fmt.Errorf("failed to lock resource day: %w", err)
		}

		conflict, err := uc.detector.HasConflict(ctx, conflicts.CheckRequest{
			BusinessID:      req.BusinessID,
			Resource:        candidate.resource,
			Date:            candidate.date,
			StartTime:       candidate.startTime,
			DurationMinutes: candidate.duration,
		})
		if err != nil {
			return fmt.Errorf("failed to check conflict: %w", err)
		}
		if conflict {
			return ErrSlotNotAvailable
		}

		created, err = uc.apptRepo.Create(ctx, &domain.Appointment{
			BusinessID:      req.BusinessID,
			ServiceID:       req.ServiceID,
			ResourceType:    candidate.resource.Type,
			ResourceID:      candidate.resource.StorageID(),
			Date:            candidate.date,
			StartTime:       candidate.startTime,
			DurationMinutes: candidate.duration,
			Status:          domain.StatusPending,
			CustomerRef:     req.CustomerRef,
			ServiceName:     service.Name,
			Notes:           req.Notes,
		})
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotNotAvailable) {
			uc.logger.Info("CreateAppointment: slot taken: business=%d resource=%s:%d date=%s start=%s",
				req.BusinessID, candidate.resource.Type, candidate.resource.KeyID(),
				candidate.date.Format(domain.DateFormat), candidate.startTime)
			return nil, ErrSlotNotAvailable
		}
		if errors.Is(err, txmanager.ErrRetriesExhausted) {
			// Под устойчивой конкуренцией честнее сказать "занято", чем 500
			uc.logger.Warn("CreateAppointment: serialization retries exhausted: %v", err)
			return nil, ErrSlotNotAvailable
		}
		uc.logger.Error("CreateAppointment: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 9. После коммита: инвалидация кэша и событие — best effort
	uc.afterCommit(ctx, created, now)

	uc.logger.Info("CreateAppointment: created appointment id=%d, business=%d, resource=%s:%d, date=%s, start=%s",
		created.ID, created.BusinessID, created.ResourceType, candidate.resource.KeyID(),
		created.Date.Format(domain.DateFormat), created.StartTime)

	return &Response{Appointment: created}, nil
}

// resolveResource разрешает селектор запроса в конкретный bookable-ресурс
func (uc *UseCase) resolveResource(ctx context.Context, req *Request) (domain.Resource, *int64, error) {
	switch {
	case req.StaffID != nil:
		staff, err := uc.directory.GetStaffMember(ctx, req.BusinessID, *req.StaffID)
		if err != nil {
			if errors.Is(err, directory.ErrResourceNotFound) {
				uc.logger.Warn("CreateAppointment: staff id=%d not found", *req.StaffID)
				return domain.Resource{}, nil, ErrResourceNotFound
			}
			return domain.Resource{}, nil, fmt.Errorf("%w: failed to get staff member: %v", ErrInternal, err)
		}
		res := staff.Resource()
		if !res.IsBookable() {
			return domain.Resource{}, nil, ErrResourceNotFound
		}
		return res, req.StaffID, nil

	case req.ServicePointID != nil:
		point, err := uc.directory.GetServicePoint(ctx, req.BusinessID, *req.ServicePointID)
		if err != nil {
			if errors.Is(err, directory.ErrResourceNotFound) {
				uc.logger.Warn("CreateAppointment: service point id=%d not found", *req.ServicePointID)
				return domain.Resource{}, nil, ErrResourceNotFound
			}
			return domain.Resource{}, nil, fmt.Errorf("%w: failed to get service point: %v", ErrInternal, err)
		}
		res := point.Resource()
		if !res.IsBookable() {
			return domain.Resource{}, nil, ErrResourceNotFound
		}
		return res, req.ServicePointID, nil

	default:
		return domain.BusinessResource(), nil, nil
	}
}

func (uc *UseCase) afterCommit(ctx context.Context, appt *domain.Appointment, now time.Time) {
	if uc.cache != nil {
		if err := uc.cache.InvalidateDay(ctx, appt.BusinessID, appt.Date); err != nil {
			uc.logger.Warn("CreateAppointment: failed to invalidate slots cache: %v", err)
		}
	}

	if uc.publisher != nil {
		uc.publisher.PublishAsync(events.FromAppointment(events.KindCreated, appt, nil, now))
	}
}
