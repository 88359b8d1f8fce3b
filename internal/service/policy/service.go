package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharpcut/booking-service/internal/domain"
	policyRepo "github.com/sharpcut/booking-service/internal/infra/storage/policy"
	catalogClient "github.com/sharpcut/booking-service/internal/integrations/catalogservice"
	identityClient "github.com/sharpcut/booking-service/internal/integrations/identityservice"
	"github.com/sharpcut/booking-service/internal/service/policy/models"
)

// Service сервис для работы с политиками бронирования
type Service struct {
	policyRepo     PolicyRepository
	catalogClient  CatalogServiceClient
	identityClient IdentityServiceClient
	logger         Logger
}

// NewService создает новый экземпляр сервиса политик
func NewService(
	policyRepo PolicyRepository,
	catalogClient CatalogServiceClient,
	identityClient IdentityServiceClient,
	logger Logger,
) *Service {
	return &Service{
		policyRepo:     policyRepo,
		catalogClient:  catalogClient,
		identityClient: identityClient,
		logger:         logger,
	}
}

// GetEffective получает действующую политику барбера
// Публичный метод - клиенты используют его, чтобы показать правила до бронирования
// Приоритет: персональная политика барбера > общая политика салона > дефолты
func (s *Service) GetEffective(ctx context.Context, barberID int64) (*models.PolicyResponse, error) {
	s.logger.Info("GetEffective: fetching policy for barber=%d", barberID)

	// Проверяем, что барбер существует в каталоге
	if _, err := s.catalogClient.GetBarber(ctx, barberID); err != nil {
		if errors.Is(err, catalogClient.ErrBarberNotFound) {
			s.logger.Warn("GetEffective: barber id=%d not found", barberID)
			return nil, ErrBarberNotFound
		}
		s.logger.Error("GetEffective: failed to get barber id=%d: %v", barberID, err)
		return nil, fmt.Errorf("%w: failed to get barber: %v", ErrInternal, err)
	}

	policy, err := s.policyRepo.GetEffective(ctx, barberID)
	if err != nil {
		if errors.Is(err, policyRepo.ErrPolicyNotFound) {
			// Нет ни персональной, ни общей политики - отдаём дефолтную
			s.logger.Info("GetEffective: no stored policy for barber=%d, returning defaults", barberID)
			return models.FromDomainPolicy(domain.DefaultBookingPolicy()), nil
		}
		s.logger.Error("GetEffective: repository error for barber=%d: %v", barberID, err)
		return nil, fmt.Errorf("%w: GetEffective - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetEffective: successfully fetched policy for barber=%d (level: %s)",
		barberID, s.getPolicyLevel(policy))
	return models.FromDomainPolicy(policy), nil
}

// Update создаёт или обновляет персональную политику барбера
// Доступно только администраторам
// Поддерживает частичное обновление - неуказанные поля берутся из текущей
// действующей политики
func (s *Service) Update(ctx context.Context, barberID int64, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error) {
	s.logger.Info("Update: updating policy for barber=%d by user=%s", barberID, req.UserID)

	// 1. Проверяем права администратора
	if err := s.checkAdminAccess(ctx, req.UserID); err != nil {
		return nil, err
	}

	// 2. Проверяем, что барбер существует в каталоге
	if _, err := s.catalogClient.GetBarber(ctx, barberID); err != nil {
		if errors.Is(err, catalogClient.ErrBarberNotFound) {
			s.logger.Warn("Update: barber id=%d not found", barberID)
			return nil, ErrBarberNotFound
		}
		s.logger.Error("Update: failed to get barber id=%d: %v", barberID, err)
		return nil, fmt.Errorf("%w: failed to get barber: %v", ErrInternal, err)
	}

	// 3. Берём текущую действующую политику как основу для частичного обновления
	base, err := s.policyRepo.GetEffective(ctx, barberID)
	if err != nil {
		if errors.Is(err, policyRepo.ErrPolicyNotFound) {
			base = domain.DefaultBookingPolicy()
		} else {
			s.logger.Error("Update: repository error for barber=%d: %v", barberID, err)
			return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}
	}

	// 4. Применяем обновления и валидируем результат
	updated := *base
	updated.BarberID = &barberID
	req.ApplyToPolicy(&updated)

	if err := s.validatePolicyData(&updated); err != nil {
		s.logger.Warn("Update: validation failed for barber=%d: %v", barberID, err)
		return nil, err
	}

	// 5. Сохраняем персональную политику барбера
	saved, err := s.policyRepo.Upsert(ctx, &updated)
	if err != nil {
		s.logger.Error("Update: repository error for barber=%d: %v", barberID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated policy for barber=%d", barberID)
	return models.FromDomainPolicy(saved), nil
}

// Delete удаляет персональную политику барбера
// После удаления барбер снова наследует общую политику салона (или дефолты)
// Доступно только администраторам
func (s *Service) Delete(ctx context.Context, barberID int64, userID string) error {
	s.logger.Info("Delete: deleting policy for barber=%d by user=%s", barberID, userID)

	// Проверяем права администратора
	if err := s.checkAdminAccess(ctx, userID); err != nil {
		return err
	}

	if err := s.policyRepo.Delete(ctx, &barberID); err != nil {
		if errors.Is(err, policyRepo.ErrPolicyNotFound) {
			s.logger.Warn("Delete: policy for barber=%d not found", barberID)
			return ErrPolicyNotFound
		}
		s.logger.Error("Delete: repository error for barber=%d: %v", barberID, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted policy for barber=%d", barberID)
	return nil
}

// Вспомогательные методы

// checkAdminAccess проверяет, что пользователь является администратором
func (s *Service) checkAdminAccess(ctx context.Context, userID string) error {
	user, err := s.identityClient.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, identityClient.ErrUserNotFound) {
			s.logger.Warn("checkAdminAccess: user=%s not found", userID)
			return ErrUserNotFound
		}
		s.logger.Error("checkAdminAccess: failed to get user=%s: %v", userID, err)
		return fmt.Errorf("%w: checkAdminAccess - failed to get user: %v", ErrInternal, err)
	}

	if !user.IsAdministrator {
		s.logger.Warn("checkAdminAccess: user=%s is not an administrator", userID)
		return ErrAccessDenied
	}

	return nil
}

// validatePolicyData валидирует параметры политики
func (s *Service) validatePolicyData(p *domain.BookingPolicy) error {
	// Проверяем slotGranularityMinutes
	if p.SlotGranularityMinutes < domain.MinSlotGranularityMinutes || p.SlotGranularityMinutes > domain.MaxSlotGranularityMinutes {
		return fmt.Errorf("%w: slotGranularityMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinSlotGranularityMinutes, domain.MaxSlotGranularityMinutes)
	}

	// Проверяем cancellationCutoffMinutes
	if p.CancellationCutoffMinutes < domain.MinCancellationCutoffMinutes || p.CancellationCutoffMinutes > domain.MaxCancellationCutoffMinutes {
		return fmt.Errorf("%w: cancellationCutoffMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinCancellationCutoffMinutes, domain.MaxCancellationCutoffMinutes)
	}

	// Проверяем minBookingNoticeMinutes
	if p.MinBookingNoticeMinutes < domain.MinBookingNoticeMinutes || p.MinBookingNoticeMinutes > domain.MaxBookingNoticeMinutes {
		return fmt.Errorf("%w: minBookingNoticeMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinBookingNoticeMinutes, domain.MaxBookingNoticeMinutes)
	}

	// Проверяем advanceBookingDays
	if p.AdvanceBookingDays < domain.MinAdvanceBookingDays || p.AdvanceBookingDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advanceBookingDays must be between %d and %d",
			ErrInvalidInput, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDays)
	}

	return nil
}

// getPolicyLevel возвращает строковое представление уровня политики для логирования
func (s *Service) getPolicyLevel(p *domain.BookingPolicy) string {
	if p.IsShopWide() {
		return "shop"
	}
	return "barber"
}
