package scheduleconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/avenirbook/scheduling-engine/internal/domain"
	configRepo "github.com/avenirbook/scheduling-engine/internal/infra/storage/scheduleconfig"
	directoryClient "github.com/avenirbook/scheduling-engine/internal/integrations/directory"
	"github.com/avenirbook/scheduling-engine/internal/service/scheduleconfig/models"
)

// Service сервис для работы с конфигурацией расписания
type Service struct {
	configRepo ConfigRepository
	directory  DirectoryClient
	logger     Logger
}

// NewService создает новый экземпляр сервиса конфигурации
func NewService(
	configRepo ConfigRepository,
	directory DirectoryClient,
	logger Logger,
) *Service {
	return &Service{
		configRepo: configRepo,
		directory:  directory,
		logger:     logger,
	}
}

// GetResolved получает действующую конфигурацию с учетом иерархии приоритетов
// Публичный метод - используется клиентами перед запросом слотов
// Приоритет: resource-specific > business-wide > значения по умолчанию
func (s *Service) GetResolved(ctx context.Context, req *models.GetConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("GetResolved: fetching config for business=%d, resource=%v", req.BusinessID, req.ResourceID)

	if req.BusinessID <= 0 {
		return nil, fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	config, err := s.configRepo.GetConfigWithHierarchy(ctx, req.BusinessID, req.ResourceID)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			// Для бизнеса без конфигурации действуют значения по умолчанию
			defaultConfig := domain.DefaultScheduleConfig()
			defaultConfig.BusinessID = req.BusinessID
			s.logger.Info("GetResolved: no config for business=%d, using defaults", req.BusinessID)
			return models.FromDomainConfig(defaultConfig), nil
		}
		s.logger.Error("GetResolved: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: GetResolved - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetResolved: successfully fetched config id=%d for business=%d", config.ID, req.BusinessID)
	return models.FromDomainConfig(config), nil
}

// GetAllByBusiness получает все конфигурации бизнеса
// Доступно только управляющим бизнеса
func (s *Service) GetAllByBusiness(ctx context.Context, businessID int64, actorID int64) (*models.ConfigListResponse, error) {
	s.logger.Info("GetAllByBusiness: fetching configs for business=%d, actor=%d", businessID, actorID)

	business, err := s.getBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	if !business.IsManagedBy(actorID) {
		s.logger.Warn("GetAllByBusiness: actor=%d does not manage business=%d", actorID, businessID)
		return nil, ErrAccessDenied
	}

	configs, err := s.configRepo.GetAllByBusiness(ctx, businessID)
	if err != nil {
		s.logger.Error("GetAllByBusiness: repository error for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: GetAllByBusiness - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetAllByBusiness: successfully fetched %d configs for business=%d", len(configs), businessID)
	return models.FromDomainConfigList(configs), nil
}

// Update создает или обновляет конфигурацию расписания
// Доступно только владельцу бизнеса
// Проверяет существование ресурса, если конфигурация привязана к ресурсу
func (s *Service) Update(ctx context.Context, req *models.UpdateConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Update: updating config for business=%d, resource=%v by actor=%d",
		req.BusinessID, req.ResourceID, req.ActorID)

	// 1. Валидируем входные данные
	if err := s.validateConfigData(req.SlotGranularityMinutes, req.AdvanceBookingDays, req.MinBookingNoticeMinutes); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бизнес для проверки прав доступа
	business, err := s.getBusiness(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}

	// 3. Менять конфигурацию может только владелец
	if business.OwnerID != req.ActorID {
		s.logger.Warn("Update: actor=%d is not the owner of business=%d", req.ActorID, req.BusinessID)
		return nil, ErrAccessDenied
	}

	// 4. Если указан ресурс, проверяем его существование
	if req.ResourceID != nil {
		if err := s.checkResourceExists(ctx, req.BusinessID, *req.ResourceID); err != nil {
			return nil, err
		}
	}

	// 5. Создаем или обновляем конфигурацию
	updated, err := s.configRepo.Upsert(ctx, req.ToDomainConfig())
	if err != nil {
		s.logger.Error("Update: repository error: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully saved config id=%d for business=%d", updated.ID, req.BusinessID)
	return models.FromDomainConfig(updated), nil
}

// Вспомогательные методы

func (s *Service) getBusiness(ctx context.Context, businessID int64) (*directoryClient.Business, error) {
	business, err := s.directory.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrBusinessNotFound) {
			s.logger.Warn("getBusiness: business id=%d not found", businessID)
			return nil, ErrBusinessNotFound
		}
		s.logger.Error("getBusiness: failed to get business id=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}
	return business, nil
}

// checkResourceExists проверяет, что ресурс принадлежит бизнесу
// Идентификатор может указывать на сотрудника или точку обслуживания
func (s *Service) checkResourceExists(ctx context.Context, businessID, resourceID int64) error {
	if _, err := s.directory.GetStaffMember(ctx, businessID, resourceID); err == nil {
		return nil
	} else if !errors.Is(err, directoryClient.ErrResourceNotFound) {
		s.logger.Error("checkResourceExists: failed to get staff id=%d: %v", resourceID, err)
		return fmt.Errorf("%w: failed to get staff member: %v", ErrInternal, err)
	}

	if _, err := s.directory.GetServicePoint(ctx, businessID, resourceID); err == nil {
		return nil
	} else if !errors.Is(err, directoryClient.ErrResourceNotFound) {
		s.logger.Error("checkResourceExists: failed to get service point id=%d: %v", resourceID, err)
		return fmt.Errorf("%w: failed to get service point: %v", ErrInternal, err)
	}

	s.logger.Warn("checkResourceExists: resource id=%d not found in business=%d", resourceID, businessID)
	return ErrResourceNotFound
}

// validateConfigData проверяет границы значений конфигурации
func (s *Service) validateConfigData(granularityMinutes, advanceDays, noticeMinutes int) error {
	if granularityMinutes < domain.MinSlotGranularityMinutes || granularityMinutes > domain.MaxSlotGranularityMinutes {
		return fmt.Errorf("%w: slot granularity must be within [%d, %d] minutes",
			ErrInvalidInput, domain.MinSlotGranularityMinutes, domain.MaxSlotGranularityMinutes)
	}

	if advanceDays < domain.MinAdvanceBookingDays || advanceDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advance booking days must be within [%d, %d]",
			ErrInvalidInput, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDays)
	}

	if noticeMinutes < domain.MinNoticeMinutes || noticeMinutes > domain.MaxNoticeMinutes {
		return fmt.Errorf("%w: min booking notice must be within [%d, %d] minutes",
			ErrInvalidInput, domain.MinNoticeMinutes, domain.MaxNoticeMinutes)
	}

	return nil
}
