package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/internal/infra/events"
	apptRepo "github.com/avenirbook/scheduling-engine/internal/infra/storage/appointment"
	configRepo "github.com/avenirbook/scheduling-engine/internal/infra/storage/scheduleconfig"
	"github.com/avenirbook/scheduling-engine/internal/service/conflicts"
	"github.com/avenirbook/scheduling-engine/pkg/txmanager"
)

// UseCase use case для переноса записи.
//
// Перенос меняет только дату и время — ресурс и длительность записи
// неизменны. Проверка нового слота исключает саму запись из занятых
// интервалов: перенос внутри своего же слота или с перекрытием с ним
// не конфликтует сам с собой. Запись переноса попадает в журнал
// изменений в той же транзакции, что и сам перенос.
type UseCase struct {
	appointments  AppointmentRepository
	modifications ModificationRepository
	configRepo    ConfigRepository
	detector      ConflictDetector
	directory     DirectoryClient
	txManager     TransactionManager
	cache         SlotsCache
	publisher     EventPublisher
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointments AppointmentRepository,
	modifications ModificationRepository,
	configRepo ConfigRepository,
	detector ConflictDetector,
	directory DirectoryClient,
	txManager TransactionManager,
	cache SlotsCache,
	publisher EventPublisher,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointments:  appointments,
		modifications: modifications,
		configRepo:    configRepo,
		detector:      detector,
		directory:     directory,
		txManager:     txManager,
		cache:         cache,
		publisher:     publisher,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case переноса записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: actor=%d, appointment=%d, newDate=%s, newStart=%s",
		req.ActorID, req.AppointmentID, req.NewDate.Format(domain.DateFormat), req.NewStartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Загружаем запись
	appt, err := uc.appointments.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("RescheduleAppointment: appointment id=%d not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("RescheduleAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	// 3. Получаем бизнес и авторизуем актора
	business, err := uc.directory.GetBusiness(ctx, appt.BusinessID)
	if err != nil {
		uc.logger.Error("RescheduleAppointment: failed to get business id=%d: %v", appt.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	isCustomer := appt.CustomerRef == strconv.FormatInt(req.ActorID, 10)
	if !isCustomer && !business.IsManagedBy(req.ActorID) {
		uc.logger.Warn("RescheduleAppointment: actor=%d is not allowed to modify appointment id=%d",
			req.ActorID, appt.ID)
		return nil, ErrForbidden
	}

	// 4. Статусная защита: терминальные записи не переносятся
	if !appt.CanBeRescheduled() {
		uc.logger.Warn("RescheduleAppointment: appointment id=%d has status %q", appt.ID, appt.Status)
		return nil, ErrCannotReschedule
	}

	// 5. Текущее время в таймзоне бизнеса
	loc, err := time.LoadLocation(business.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid business timezone: %v", ErrInternal, err)
	}
	now := uc.timeProvider.Now().In(loc)

	// 6. Восстанавливаем ресурс записи (для вместимости и конфигурации)
	resource, err := uc.resourceForAppointment(ctx, appt)
	if err != nil {
		return nil, err
	}

	config, err := uc.configRepo.GetConfigWithHierarchy(ctx, appt.BusinessID, appt.ResourceID)
	if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
		uc.logger.Error("RescheduleAppointment: failed to get config: %v", err)
		return nil, fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
	}
	if config == nil {
		config = domain.DefaultScheduleConfig()
	}

	// 7. Валидация новой даты и нового слота (длительность — снимок записи)
	if err := validateDate(req.NewDate, now, config.AdvanceBookingDays); err != nil {
		uc.logger.Warn("RescheduleAppointment: date validation failed: %v", err)
		return nil, err
	}

	workingHours := business.Hours.ForWeekday(int(req.NewDate.Weekday()))
	if err := validateSlot(
		workingHours,
		req.NewStartTime,
		appt.DurationMinutes,
		config.SlotGranularityMinutes,
		req.NewDate,
		now,
		config.MinBookingNoticeMinutes,
	); err != nil {
		uc.logger.Warn("RescheduleAppointment: slot validation failed: %v", err)
		return nil, err
	}

	oldDate := appt.Date
	oldStart := appt.StartTime
	oldStatus := appt.Status

	// 8. Проверка нового слота и перенос — атомарно, под локами обоих дней
	err = uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := uc.lockDays(ctx, appt.BusinessID, resource.KeyID(), oldDate, req.NewDate); err != nil {
			return err
		}

		// Перечитываем запись под локом: статус мог измениться после шага 2
		fresh, err := uc.appointments.GetByID(ctx, appt.ID)
		if err != nil {
			return fmt.Errorf("failed to reload appointment: %w", err)
		}
		if !fresh.CanBeRescheduled() {
			return ErrCannotReschedule
		}

		conflict, err := uc.detector.HasConflict(ctx, conflicts.CheckRequest{
			BusinessID:           appt.BusinessID,
			Resource:             resource,
			Date:                 req.NewDate,
			StartTime:            req.NewStartTime,
			DurationMinutes:      appt.DurationMinutes,
			ExcludeAppointmentID: &appt.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to check conflict: %w", err)
		}
		if conflict {
			return ErrSlotNotAvailable
		}

		if err := uc.appointments.UpdateSchedule(ctx, appt.ID, req.NewDate, req.NewStartTime); err != nil {
			return fmt.Errorf("failed to update schedule: %w", err)
		}

		if _, err := uc.modifications.Create(ctx, &domain.ModificationRecord{
			AppointmentID:      appt.ID,
			Type:               domain.ModificationReschedule,
			OldDate:            oldDate,
			OldStartTime:       oldStart,
			OldDurationMinutes: appt.DurationMinutes,
			NewDate:            &req.NewDate,
			NewStartTime:       &req.NewStartTime,
			NewDurationMinutes: &appt.DurationMinutes,
			OldStatus:          oldStatus,
			NewStatus:          fresh.Status,
			Reason:             req.Reason,
			ActorID:            req.ActorID,
		}); err != nil {
			return fmt.Errorf("failed to append modification record: %w", err)
		}

		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotAvailable):
			return nil, ErrSlotNotAvailable
		case errors.Is(err, ErrCannotReschedule):
			return nil, ErrCannotReschedule
		case errors.Is(err, txmanager.ErrRetriesExhausted):
			uc.logger.Warn("RescheduleAppointment: serialization retries exhausted: %v", err)
			return nil, ErrSlotNotAvailable
		default:
			uc.logger.Error("RescheduleAppointment: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	appt.Date = req.NewDate
	appt.StartTime = req.NewStartTime

	// 9. После коммита: инвалидация кэша обоих дней и событие
	uc.afterCommit(ctx, appt, oldDate, req.Reason, now)

	uc.logger.Info("RescheduleAppointment: moved appointment id=%d from %s %s to %s %s",
		appt.ID, oldDate.Format(domain.DateFormat), oldStart,
		appt.Date.Format(domain.DateFormat), appt.StartTime)

	return &Response{Appointment: appt}, nil
}

// lockDays берет advisory lock на старый и новый день ресурса.
// Порядок локов детерминирован по дате, иначе встречные переносы
// могут заблокировать друг друга.
func (uc *UseCase) lockDays(ctx context.Context, businessID, resourceID int64, oldDate, newDate time.Time) error {
	first, second := oldDate, newDate
	if second.Before(first) {
		first, second = second, first
	}

	if err := uc.appointments.LockResourceDay(ctx, businessID, resourceID, first); err != nil {
		return fmt.Errorf("failed to lock resource day: %w", err)
	}
	if isSameDay(first, second) {
		return nil
	}
	if err := uc.appointments.LockResourceDay(ctx, businessID, resourceID, second); err != nil {
		return fmt.Errorf("failed to lock resource day: %w", err)
	}
	return nil
}

// resourceForAppointment восстанавливает доменный ресурс записи
func (uc *UseCase) resourceForAppointment(ctx context.Context, appt *domain.Appointment) (domain.Resource, error) {
	switch appt.ResourceType {
	case domain.ResourceStaff:
		if appt.ResourceID == nil {
			return domain.Resource{}, fmt.Errorf("%w: staff appointment without resource id", ErrInternal)
		}
		staff, err := uc.directory.GetStaffMember(ctx, appt.BusinessID, *appt.ResourceID)
		if err != nil {
			return domain.Resource{}, fmt.Errorf("%w: failed to get staff member: %v", ErrInternal, err)
		}
		return staff.Resource(), nil

	case domain.ResourceServicePoint:
		if appt.ResourceID == nil {
			return domain.Resource{}, fmt.Errorf("%w: service point appointment without resource id", ErrInternal)
		}
		point, err := uc.directory.GetServicePoint(ctx, appt.BusinessID, *appt.ResourceID)
		if err != nil {
			return domain.Resource{}, fmt.Errorf("%w: failed to get service point: %v", ErrInternal, err)
		}
		return point.Resource(), nil

	default:
		return domain.BusinessResource(), nil
	}
}

func (uc *UseCase) afterCommit(ctx context.Context, appt *domain.Appointment, oldDate time.Time, reason string, now time.Time) {
	if uc.cache != nil {
		if err := uc.cache.InvalidateDay(ctx, appt.BusinessID, oldDate); err != nil {
			uc.logger.Warn("RescheduleAppointment: failed to invalidate slots cache: %v", err)
		}
		if !isSameDay(oldDate, appt.Date) {
			if err := uc.cache.InvalidateDay(ctx, appt.BusinessID, appt.Date); err != nil {
				uc.logger.Warn("RescheduleAppointment: failed to invalidate slots cache: %v", err)
			}
		}
	}

	if uc.publisher != nil {
		var reasonPtr *string
		if reason != "" {
			reasonPtr = &reason
		}
		uc.publisher.PublishAsync(events.FromAppointment(events.KindRescheduled, appt, reasonPtr, now))
	}
}
