package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sharpcut/booking-service/internal/domain"
	apptRepo "github.com/sharpcut/booking-service/internal/infra/storage/appointment"
	policyRepo "github.com/sharpcut/booking-service/internal/infra/storage/policy"
	identityClient "github.com/sharpcut/booking-service/internal/integrations/identityservice"
	"github.com/sharpcut/booking-service/internal/service/appointments/models"
)

// Service сервис жизненного цикла записей
type Service struct {
	apptRepo       AppointmentRepository
	policyRepo     PolicyRepository
	identityClient IdentityServiceClient
	timeProvider   TimeProvider
	logger         Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	apptRepo AppointmentRepository,
	policyRepo PolicyRepository,
	identityClient IdentityServiceClient,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		apptRepo:       apptRepo,
		policyRepo:     policyRepo,
		identityClient: identityClient,
		timeProvider:   timeProvider,
		logger:         logger,
	}
}

// GetByID получает запись по ID
// Проверяет права доступа - пользователь может видеть только свою запись,
// администратор - любую
func (s *Service) GetByID(ctx context.Context, id int64, userID string) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%s", id, userID)

	appt, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	// Проверяем права доступа
	if err := s.checkOwnerOrAdminAccess(ctx, appt, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%s to appointment id=%d", userID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched appointment id=%d", id)
	return models.FromDomainAppointment(appt), nil
}

// GetUserAppointments получает историю записей пользователя
// Пользователь видит только свои записи, администратор - любые.
// Опционально фильтрует по статусу
func (s *Service) GetUserAppointments(ctx context.Context, req *models.GetUserAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetUserAppointments: fetching appointments for user=%s, status=%v", req.UserID, req.Status)

	// Чужую историю может смотреть только администратор
	if req.RequesterID != req.UserID {
		if err := s.checkAdminAccess(ctx, req.RequesterID); err != nil {
			s.logger.Warn("GetUserAppointments: access denied for requester=%s to user=%s", req.RequesterID, req.UserID)
			return nil, err
		}
	}

	// Конвертируем статус из строки в domain.AppointmentStatus
	var domainStatus *domain.AppointmentStatus
	if req.Status != nil {
		status, err := models.ToDomainAppointmentStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserAppointments: invalid status=%s for user=%s", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	appointments, err := s.apptRepo.GetByCustomerID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserAppointments: repository error for user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserAppointments: successfully fetched %d appointments for user=%s", len(appointments), req.UserID)
	return models.FromDomainAppointmentList(appointments), nil
}

// GetBarberAppointments получает записи барбера с гибкой фильтрацией
// Поддерживает фильтрацию по периоду, статусу и включению терминальных записей
// Доступно только администраторам
//
// Примеры использования:
// - Все предстоящие записи: GetBarberAppointments(ctx, &GetBarberAppointmentsRequest{BarberID: 3, UserID: "..."})
// - Записи на дату: StartDate и EndDate указывают на одну дату
// - Записи за период: StartDate и EndDate указывают на разные даты
// - Включая отменённые: IncludeTerminal = true
func (s *Service) GetBarberAppointments(ctx context.Context, req *models.GetBarberAppointmentsRequest) (*models.AppointmentListResponse, error) {
	// Логируем запрос с деталями фильтрации
	logMsg := fmt.Sprintf("GetBarberAppointments: fetching appointments for barber=%d, user=%s", req.BarberID, req.UserID)
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeTerminal {
		logMsg += ", includeTerminal=true"
	}
	s.logger.Info(logMsg)

	// Проверяем права администратора
	if err := s.checkAdminAccess(ctx, req.UserID); err != nil {
		return nil, err
	}

	// Конвертируем request в domain фильтр
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetBarberAppointments: invalid filter for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	// Получаем записи с фильтрацией
	appointments, err := s.apptRepo.GetByBarberWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetBarberAppointments: repository error for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: GetBarberAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetBarberAppointments: successfully fetched %d appointments for barber=%d", len(appointments), req.BarberID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Cancel отменяет запись
// Пользователь может отменить только свою запись и только до дедлайна отмены
// из действующей политики. Администратор может отменить любую запись в любое
// время до терминального статуса
func (s *Service) Cancel(ctx context.Context, appointmentID int64, req *models.CancelAppointmentRequest) error {
	s.logger.Info("Cancel: cancelling appointment id=%d by user=%s", appointmentID, req.UserID)

	// Получаем запись
	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Cancel: appointment id=%d not found", appointmentID)
			return ErrAppointmentNotFound
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	// Проверяем, можно ли отменить запись
	if !appt.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%d cannot be cancelled, status=%s", appointmentID, appt.Status)
		return ErrCannotCancel
	}

	if appt.CustomerID == req.UserID {
		// Владелец записи: проверяем дедлайн отмены из политики
		if err := s.checkCancellationWindow(ctx, appt); err != nil {
			return err
		}
	} else {
		// Не владелец: отменить может только администратор, без дедлайна
		if err := s.checkAdminAccess(ctx, req.UserID); err != nil {
			s.logger.Warn("Cancel: access denied for user=%s to cancel appointment id=%d", req.UserID, appointmentID)
			return ErrAccessDenied
		}
	}

	// Отменяем запись
	if err := s.apptRepo.Cancel(ctx, appointmentID, req.CancellationReason); err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			// Статус изменился между чтением и отменой
			s.logger.Warn("Cancel: appointment id=%d not found during cancellation", appointmentID)
			return ErrCannotCancel
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled appointment id=%d", appointmentID)
	return nil
}

// Complete помечает запись завершённой
// Доступно только администраторам и только для записей, время которых прошло.
// Фоновый sweep закрывает пропущенные записи автоматически
func (s *Service) Complete(ctx context.Context, appointmentID int64, req *models.CompleteAppointmentRequest) error {
	s.logger.Info("Complete: completing appointment id=%d by user=%s", appointmentID, req.UserID)

	// Получаем запись
	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Complete: appointment id=%d not found", appointmentID)
			return ErrAppointmentNotFound
		}
		s.logger.Error("Complete: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Complete - repository error: %v", ErrInternal, err)
	}

	// Проверяем права администратора
	if err := s.checkAdminAccess(ctx, req.UserID); err != nil {
		s.logger.Warn("Complete: access denied for user=%s to complete appointment id=%d", req.UserID, appointmentID)
		return err
	}

	// Проверяем, можно ли завершить запись
	if !appt.CanBeCompleted() {
		s.logger.Warn("Complete: appointment id=%d cannot be completed, status=%s", appointmentID, appt.Status)
		return ErrCannotComplete
	}

	// Завершить можно только прошедшую запись
	endsAt, err := appt.EndsAt()
	if err != nil {
		s.logger.Error("Complete: failed to compute end time for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Complete - failed to compute end time: %v", ErrInternal, err)
	}
	if s.timeProvider.Now().Before(endsAt) {
		s.logger.Warn("Complete: appointment id=%d has not elapsed yet, ends at %s", appointmentID, endsAt.Format(time.RFC3339))
		return ErrNotElapsed
	}

	// Завершаем запись
	if err := s.apptRepo.Complete(ctx, appointmentID); err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			// Статус изменился между чтением и завершением
			s.logger.Warn("Complete: appointment id=%d not found during completion", appointmentID)
			return ErrCannotComplete
		}
		s.logger.Error("Complete: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Complete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Complete: successfully completed appointment id=%d", appointmentID)
	return nil
}

// Вспомогательные методы

// checkOwnerOrAdminAccess проверяет, что пользователь имеет доступ к записи
// Пользователь может видеть свою запись или если он администратор
func (s *Service) checkOwnerOrAdminAccess(ctx context.Context, appt *domain.Appointment, userID string) error {
	// Если пользователь владелец записи - доступ разрешён
	if appt.CustomerID == userID {
		return nil
	}

	// Проверяем, является ли пользователь администратором
	if err := s.checkAdminAccess(ctx, userID); err != nil {
		// Ошибка уже залогирована в checkAdminAccess
		return ErrAccessDenied
	}

	return nil
}

// checkAdminAccess проверяет, что пользователь является администратором
func (s *Service) checkAdminAccess(ctx context.Context, userID string) error {
	// Получаем пользователя через IdentityService
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

	s.logger.Info("checkAdminAccess: user=%s is an administrator", userID)
	return nil
}

// checkCancellationWindow проверяет, что до начала записи осталось не меньше
// дедлайна отмены из действующей политики барбера
func (s *Service) checkCancellationWindow(ctx context.Context, appt *domain.Appointment) error {
	policy, err := s.policyRepo.GetEffective(ctx, appt.BarberID)
	if err != nil {
		if errors.Is(err, policyRepo.ErrPolicyNotFound) {
			// Нет ни персональной, ни общей политики - применяем дефолтную
			policy = domain.DefaultBookingPolicy()
		} else {
			s.logger.Error("checkCancellationWindow: failed to get policy for barber=%d: %v", appt.BarberID, err)
			return fmt.Errorf("%w: checkCancellationWindow - failed to get policy: %v", ErrInternal, err)
		}
	}

	startsAt, err := appt.StartsAt()
	if err != nil {
		s.logger.Error("checkCancellationWindow: failed to compute start time for appointment id=%d: %v", appt.ID, err)
		return fmt.Errorf("%w: checkCancellationWindow - failed to compute start time: %v", ErrInternal, err)
	}

	deadline := startsAt.Add(-time.Duration(policy.CancellationCutoffMinutes) * time.Minute)
	if s.timeProvider.Now().After(deadline) {
		s.logger.Warn("checkCancellationWindow: deadline %s passed for appointment id=%d",
			deadline.Format(time.RFC3339), appt.ID)
		return ErrCancellationWindowClosed
	}

	return nil
}
