package appointments

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	"github.com/avenirbook/scheduling-engine/internal/infra/events"
	apptRepo "github.com/avenirbook/scheduling-engine/internal/infra/storage/appointment"
	directoryClient "github.com/avenirbook/scheduling-engine/internal/integrations/directory"
	"github.com/avenirbook/scheduling-engine/internal/service/appointments/models"
)

// Service сервис для работы с записями
type Service struct {
	appointments  AppointmentRepository
	modifications ModificationRepository
	directory     DirectoryClient
	txManager     TransactionManager
	cache         SlotsCache
	publisher     EventPublisher
	timeProvider  TimeProvider
	logger        Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointments AppointmentRepository,
	modifications ModificationRepository,
	directory DirectoryClient,
	txManager TransactionManager,
	cache SlotsCache,
	publisher EventPublisher,
	logger Logger,
) *Service {
	return &Service{
		appointments:  appointments,
		modifications: modifications,
		directory:     directory,
		txManager:     txManager,
		cache:         cache,
		publisher:     publisher,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// GetByID получает запись по ID
// Проверяет права доступа - клиент может видеть только свою запись,
// менеджер бизнеса - любую запись своего бизнеса
func (s *Service) GetByID(ctx context.Context, id int64, actorID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for actor=%d", id, actorID)

	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkActorAccess(ctx, appt, actorID); err != nil {
		s.logger.Warn("GetByID: access denied for actor=%d to appointment id=%d", actorID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched appointment id=%d", id)
	return models.FromDomainAppointment(appt), nil
}

// GetCustomerAppointments получает историю записей клиента
// Клиент может видеть только собственную историю
func (s *Service) GetCustomerAppointments(ctx context.Context, req *models.GetCustomerAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetCustomerAppointments: fetching appointments for customer=%s, status=%v", req.CustomerRef, req.Status)

	if req.CustomerRef != strconv.FormatInt(req.ActorID, 10) {
		s.logger.Warn("GetCustomerAppointments: actor=%d requested history of customer=%s", req.ActorID, req.CustomerRef)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.AppointmentStatus
	if req.Status != nil {
		status, err := models.ToDomainAppointmentStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCustomerAppointments: invalid status=%s for customer=%s", *req.Status, req.CustomerRef)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	appointments, err := s.appointments.GetByCustomerRef(ctx, req.CustomerRef, domainStatus)
	if err != nil {
		s.logger.Error("GetCustomerAppointments: repository error for customer=%s: %v", req.CustomerRef, err)
		return nil, fmt.Errorf("%w: GetCustomerAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerAppointments: successfully fetched %d appointments for customer=%s", len(appointments), req.CustomerRef)
	return models.FromDomainAppointmentList(appointments), nil
}

// GetBusinessAppointments получает записи бизнеса с гибкой фильтрацией
// Поддерживает фильтрацию по ресурсу, периоду, статусу и включению неактивных записей
// Доступно только управляющим бизнеса
//
// Примеры использования:
// - Все активные записи: GetBusinessAppointments(ctx, &GetBusinessAppointmentsRequest{BusinessID: 123, ActorID: 456})
// - Записи конкретного сотрудника: указать ResourceType="staff" и ResourceID
// - Записи на дату: StartDate и EndDate указывают на одну дату
// - Записи за период: StartDate и EndDate указывают на разные даты
// - Только подтвержденные: указать Status = "confirmed"
// - Включая отменённые: IncludeInactive = true
func (s *Service) GetBusinessAppointments(ctx context.Context, req *models.GetBusinessAppointmentsRequest) (*models.AppointmentListResponse, error) {
	logMsg := fmt.Sprintf("GetBusinessAppointments: fetching appointments for business=%d, actor=%d", req.BusinessID, req.ActorID)
	if req.ResourceID != nil {
		logMsg += fmt.Sprintf(", resource=%d", *req.ResourceID)
	}
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	if err := s.checkManagerAccess(ctx, req.BusinessID, req.ActorID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetBusinessAppointments: invalid filter for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	appointments, err := s.appointments.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetBusinessAppointments: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: GetBusinessAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetBusinessAppointments: successfully fetched %d appointments for business=%d", len(appointments), req.BusinessID)
	return models.FromDomainAppointmentList(appointments), nil
}

// GetHistory возвращает журнал изменений записи в порядке добавления
// Права доступа те же, что и на саму запись
func (s *Service) GetHistory(ctx context.Context, appointmentID int64, actorID int64) (*models.ModificationListResponse, error) {
	s.logger.Info("GetHistory: fetching history for appointment id=%d, actor=%d", appointmentID, actorID)

	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetHistory: appointment id=%d not found", appointmentID)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetHistory: repository error for appointment id=%d: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: GetHistory - repository error: %v", ErrInternal, err)
	}

	if err := s.checkActorAccess(ctx, appt, actorID); err != nil {
		s.logger.Warn("GetHistory: access denied for actor=%d to appointment id=%d", actorID, appointmentID)
		return nil, err
	}

	records, err := s.modifications.GetByAppointmentID(ctx, appointmentID)
	if err != nil {
		s.logger.Error("GetHistory: repository error for appointment id=%d: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: GetHistory - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetHistory: successfully fetched %d records for appointment id=%d", len(records), appointmentID)
	return models.FromDomainModificationList(records), nil
}

// Cancel отменяет запись
// Клиент может отменить только свою запись, управляющий - любую запись бизнеса.
// Отмена терминальной записи запрещена; состоявшаяся отмена ретроактивно
// освобождает вместимость слота. Строка журнала пишется в той же транзакции.
func (s *Service) Cancel(ctx context.Context, appointmentID int64, req *models.CancelAppointmentRequest) error {
	s.logger.Info("Cancel: cancelling appointment id=%d by actor=%d", appointmentID, req.ActorID)

	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Cancel: appointment id=%d not found", appointmentID)
			return ErrAppointmentNotFound
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	// Проверяем права: владелец записи или управляющий бизнеса
	isCustomer := appt.CustomerRef == strconv.FormatInt(req.ActorID, 10)
	if !isCustomer {
		if err := s.checkManagerAccess(ctx, appt.BusinessID, req.ActorID); err != nil {
			s.logger.Warn("Cancel: access denied for actor=%d to cancel appointment id=%d", req.ActorID, appointmentID)
			return ErrAccessDenied
		}
	}

	if !appt.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%d cannot be cancelled, status=%s", appointmentID, appt.Status)
		return ErrCannotCancel
	}

	oldStatus := appt.Status

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.appointments.Cancel(ctx, appointmentID, req.CancellationReason); err != nil {
			return fmt.Errorf("failed to cancel appointment: %w", err)
		}

		if _, err := s.modifications.Create(ctx, &domain.ModificationRecord{
			AppointmentID:      appointmentID,
			Type:               domain.ModificationCancel,
			OldDate:            appt.Date,
			OldStartTime:       appt.StartTime,
			OldDurationMinutes: appt.DurationMinutes,
			OldStatus:          oldStatus,
			NewStatus:          domain.StatusCancelled,
			Reason:             req.CancellationReason,
			ActorID:            req.ActorID,
		}); err != nil {
			return fmt.Errorf("failed to append modification record: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			return ErrAppointmentNotFound
		}
		if errors.Is(err, apptRepo.ErrStatusConflict) {
			// Конкурентная отмена или завершение успели раньше: вторая отмена
			// отклоняется, журнал получает ровно одну строку cancel
			s.logger.Warn("Cancel: appointment id=%d was finalized concurrently", appointmentID)
			return ErrCannotCancel
		}
		s.logger.Error("Cancel: transaction failed for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Cancel - transaction failed: %v", ErrInternal, err)
	}

	// Отмена освобождает слот - кэш дня устарел
	s.afterMutation(ctx, appt, events.KindCancelled, &req.CancellationReason)

	s.logger.Info("Cancel: successfully cancelled appointment id=%d", appointmentID)
	return nil
}

// UpdateStatus обновляет статус записи
// Доступно только управляющим бизнеса. Переходы:
// pending -> confirmed, pending/confirmed -> completed или no_show.
// Отмена идет через Cancel, терминальные статусы не меняются.
func (s *Service) UpdateStatus(ctx context.Context, appointmentID int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating appointment id=%d to status=%s by actor=%d",
		appointmentID, req.Status, req.ActorID)

	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("UpdateStatus: appointment id=%d not found", appointmentID)
			return ErrAppointmentNotFound
		}
		s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	if err := s.checkManagerAccess(ctx, appt.BusinessID, req.ActorID); err != nil {
		return err
	}

	newStatus, err := models.ToDomainAppointmentStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%d", req.Status, appointmentID)
		return fmt.Errorf("%w: invalid status", ErrInvalidStatus)
	}

	if !isAllowedTransition(appt.Status, newStatus) {
		s.logger.Warn("UpdateStatus: transition %s -> %s is not allowed for appointment id=%d",
			appt.Status, newStatus, appointmentID)
		return ErrInvalidTransition
	}

	// Переход compare-and-swap: UPDATE срабатывает только если статус
	// все еще тот, для которого переход был разрешен
	if err := s.appointments.UpdateStatus(ctx, appointmentID, appt.Status, newStatus); err != nil {
		if errors.Is(err, apptRepo.ErrStatusConflict) {
			s.logger.Warn("UpdateStatus: appointment id=%d changed status concurrently", appointmentID)
			return ErrInvalidTransition
		}
		s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	// no_show освобождает слот ретроактивно - кэш дня устарел
	if newStatus == domain.StatusNoShow && s.cache != nil {
		if err := s.cache.InvalidateDay(ctx, appt.BusinessID, appt.Date); err != nil {
			s.logger.Warn("UpdateStatus: failed to invalidate slots cache: %v", err)
		}
	}

	s.logger.Info("UpdateStatus: successfully updated appointment id=%d to status=%s", appointmentID, newStatus)
	return nil
}

// Вспомогательные методы

// isAllowedTransition проверяет допустимость перехода статуса
func isAllowedTransition(from, to domain.AppointmentStatus) bool {
	switch from {
	case domain.StatusPending:
		return to == domain.StatusConfirmed || to == domain.StatusCompleted || to == domain.StatusNoShow
	case domain.StatusConfirmed:
		return to == domain.StatusCompleted || to == domain.StatusNoShow
	default:
		// Терминальные статусы не меняются; отмена идет через Cancel
		return false
	}
}

// checkActorAccess проверяет, что актор имеет доступ к записи
// Актору доступна его собственная запись, управляющему - записи его бизнеса
func (s *Service) checkActorAccess(ctx context.Context, appt *domain.Appointment, actorID int64) error {
	if appt.CustomerRef == strconv.FormatInt(actorID, 10) {
		return nil
	}

	if err := s.checkManagerAccess(ctx, appt.BusinessID, actorID); err != nil {
		// Ошибка уже залогирована в checkManagerAccess
		return ErrAccessDenied
	}

	return nil
}

// checkManagerAccess проверяет, что актор управляет бизнесом
func (s *Service) checkManagerAccess(ctx context.Context, businessID int64, actorID int64) error {
	business, err := s.directory.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrBusinessNotFound) {
			s.logger.Warn("checkManagerAccess: business id=%d not found", businessID)
			return ErrBusinessNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get business id=%d: %v", businessID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get business: %v", ErrInternal, err)
	}

	if !business.IsManagedBy(actorID) {
		s.logger.Warn("checkManagerAccess: actor=%d does not manage business=%d", actorID, businessID)
		return ErrAccessDenied
	}

	return nil
}

func (s *Service) afterMutation(ctx context.Context, appt *domain.Appointment, kind events.Kind, reason *string) {
	if s.cache != nil {
		if err := s.cache.InvalidateDay(ctx, appt.BusinessID, appt.Date); err != nil {
			s.logger.Warn("afterMutation: failed to invalidate slots cache: %v", err)
		}
	}

	if s.publisher != nil {
		s.publisher.PublishAsync(events.FromAppointment(kind, appt, reason, s.timeProvider.Now()))
	}
}
