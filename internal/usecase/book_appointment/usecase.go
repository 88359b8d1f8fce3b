package book_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sharpcut/booking-service/internal/domain"
	apptRepo "github.com/sharpcut/booking-service/internal/infra/storage/appointment"
	policyRepo "github.com/sharpcut/booking-service/internal/infra/storage/policy"
	catalogClient "github.com/sharpcut/booking-service/internal/integrations/catalogservice"
	identityClient "github.com/sharpcut/booking-service/internal/integrations/identityservice"
	"github.com/sharpcut/booking-service/pkg/types"
)

// UseCase use case для создания записи к барберу
type UseCase struct {
	apptRepo       AppointmentRepository
	policyRepo     PolicyRepository
	catalogClient  CatalogServiceClient
	identityClient IdentityServiceClient
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	apptRepo AppointmentRepository,
	policyRepo PolicyRepository,
	catalogClient CatalogServiceClient,
	identityClient IdentityServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:       apptRepo,
		policyRepo:     policyRepo,
		catalogClient:  catalogClient,
		identityClient: identityClient,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Execute выполняет use case создания записи
// Использует сериализуемую транзакцию для предотвращения гонки данных:
// два конкурентных запроса на пересекающиеся интервалы одного барбера
// не могут зафиксироваться оба
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookAppointment: customer=%s, barber=%d, service=%d, date=%s, time=%s",
		req.CustomerID, req.BarberID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Проверяем, что клиент существует
	if _, err := uc.identityClient.GetUser(ctx, req.CustomerID); err != nil {
		if errors.Is(err, identityClient.ErrUserNotFound) {
			uc.logger.Warn("BookAppointment: user=%s not found", req.CustomerID)
			return nil, ErrUserNotFound
		}
		uc.logger.Error("BookAppointment: failed to get user=%s: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: failed to get user: %v", ErrInternal, err)
	}

	// 4. Получаем барбера
	barber, err := uc.catalogClient.GetBarber(ctx, req.BarberID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrBarberNotFound) {
			uc.logger.Warn("BookAppointment: barber id=%d not found", req.BarberID)
			return nil, ErrBarberNotFound
		}
		uc.logger.Error("BookAppointment: failed to get barber id=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: failed to get barber: %v", ErrInternal, err)
	}

	// 5. Получаем услугу
	service, err := uc.catalogClient.GetService(ctx, req.BarberID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("BookAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("BookAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 6. Проверяем, что услуга принадлежит этому барберу
	if service.BarberID != req.BarberID {
		uc.logger.Warn("BookAppointment: service id=%d belongs to barber id=%d, not %d",
			req.ServiceID, service.BarberID, req.BarberID)
		return nil, ErrServiceNotOfferedByBarber
	}

	// Переменная для хранения результата
	var result *domain.Appointment
	var replayed bool

	// 7. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 7.1. Повтор запроса с тем же idempotency-ключом: возвращаем
		// исходную запись, не создавая дубликат
		if req.IdempotencyKey != nil {
			existing, err := uc.apptRepo.GetByIdempotencyKey(txCtx, req.CustomerID, *req.IdempotencyKey)
			if err != nil && !errors.Is(err, apptRepo.ErrAppointmentNotFound) {
				uc.logger.Error("BookAppointment: failed to check idempotency key: %v", err)
				return fmt.Errorf("%w: failed to check idempotency key: %v", ErrInternal, err)
			}
			if existing != nil {
				uc.logger.Info("BookAppointment: idempotency key replay, returning appointment id=%d", existing.ID)
				result = existing
				replayed = true
				return nil
			}
		}

		// 7.2. Получаем действующую политику барбера
		policy, err := uc.policyRepo.GetEffective(txCtx, req.BarberID)
		if err != nil {
			if !errors.Is(err, policyRepo.ErrPolicyNotFound) {
				uc.logger.Error("BookAppointment: failed to get policy: %v", err)
				return fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
			}
			// Нет ни персональной, ни общей политики - применяем дефолтную
			policy = domain.DefaultBookingPolicy()
			uc.logger.Info("BookAppointment: using default policy for barber=%d", req.BarberID)
		}

		// 7.3. Валидация даты с учетом политики
		if err := validateDate(req.Date, now, policy.AdvanceBookingDays); err != nil {
			uc.logger.Warn("BookAppointment: date validation failed: %v", err)
			return err
		}

		// 7.4. Получаем рабочие часы барбера на указанную дату
		workingHours := getWorkingHoursForDay(barber, req.Date)
		if err := validateWithinWorkingHours(req.StartTime, service.DurationMinutes, workingHours); err != nil {
			uc.logger.Warn("BookAppointment: working hours validation failed: %v", err)
			return err
		}

		// 7.5. Проверяем выравнивание по сетке слотов
		openTime := types.TimeString(*workingHours.OpenTime)
		if err := validateSlotAlignment(req.StartTime, openTime, policy.SlotGranularityMinutes); err != nil {
			uc.logger.Warn("BookAppointment: slot alignment validation failed: %v", err)
			return err
		}

		// 7.6. Валидация времени записи (minBookingNoticeMinutes)
		if err := validateBookingTime(req.Date, req.StartTime, now, policy.MinBookingNoticeMinutes); err != nil {
			uc.logger.Warn("BookAppointment: booking time validation failed: %v", err)
			return err
		}

		// 7.7. Получаем предстоящие записи барбера на эту дату с блокировкой (FOR UPDATE)
		filter := domain.BarberAppointmentsFilter{
			BarberID:        req.BarberID,
			StartDate:       &req.Date,
			EndDate:         &req.Date,
			IncludeTerminal: false, // Терминальные записи не блокируют слоты
		}

		appointments, err := uc.apptRepo.GetByBarberWithFilter(txCtx, filter)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		// 7.8. Проверяем доступность интервала: у барбера одно кресло,
		// любое пересечение означает конфликт
		taken, err := hasOverlappingAppointment(req.StartTime, service.DurationMinutes, appointments)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to check overlaps: %v", err)
			return fmt.Errorf("%w: failed to check overlaps: %v", ErrInternal, err)
		}
		if taken {
			uc.logger.Warn("BookAppointment: slot %s+%dm is taken for barber=%d on %s",
				req.StartTime, service.DurationMinutes, req.BarberID, req.Date.Format(domain.DateFormat))
			return ErrSlotTaken
		}

		// 7.9. Создаем запись с денормализацией данных услуги
		appt := &domain.Appointment{
			CustomerID:      req.CustomerID,
			BarberID:        req.BarberID,
			ServiceID:       req.ServiceID,
			AppointmentDate: req.Date,
			StartTime:       req.StartTime,
			DurationMinutes: service.DurationMinutes,
			Status:          domain.StatusUpcoming,
			// Денормализация данных услуги
			ServiceName:      service.Name,
			ServicePrice:     service.Price,
			ConfirmationCode: uuid.NewString(),
			Notes:            req.Notes,
			IdempotencyKey:   req.IdempotencyKey,
		}

		// 7.10. Сохраняем запись
		created, err := uc.apptRepo.Create(txCtx, appt)
		if err != nil {
			if errors.Is(err, apptRepo.ErrDuplicateIdempotencyKey) && req.IdempotencyKey != nil {
				// Конкурентный запрос с тем же ключом успел раньше.
				// После неудавшегося INSERT транзакция прервана, а её снимок
				// не видит чужой коммит - перечитать запись можно только
				// снаружи, поэтому отдаем ошибку из замыкания как есть
				return err
			}
			uc.logger.Error("BookAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		// 8. Конфликт idempotency-ключа: возвращаем исходную запись,
		// перечитывая её уже вне завершившейся транзакции
		if errors.Is(err, apptRepo.ErrDuplicateIdempotencyKey) && req.IdempotencyKey != nil {
			existing, lookupErr := uc.apptRepo.GetByIdempotencyKey(ctx, req.CustomerID, *req.IdempotencyKey)
			if lookupErr != nil {
				uc.logger.Error("BookAppointment: failed to look up appointment after idempotency conflict: %v", lookupErr)
				return nil, fmt.Errorf("%w: failed to look up appointment after idempotency conflict: %v", ErrInternal, lookupErr)
			}
			uc.logger.Info("BookAppointment: idempotency key conflict, returning appointment id=%d", existing.ID)
			result = existing
			replayed = true
		} else {
			return nil, err
		}
	}

	if replayed {
		uc.logger.Info("BookAppointment: replayed appointment id=%d", result.ID)
	} else {
		uc.logger.Info("BookAppointment: successfully created appointment id=%d", result.ID)
	}

	return toResponse(result, replayed), nil
}

// toResponse конвертирует domain модель в response
func toResponse(appt *domain.Appointment, replayed bool) *Response {
	resp := &Response{
		ID:               appt.ID,
		CustomerID:       appt.CustomerID,
		BarberID:         appt.BarberID,
		ServiceID:        appt.ServiceID,
		AppointmentDate:  appt.AppointmentDate,
		StartTime:        appt.StartTime,
		DurationMinutes:  appt.DurationMinutes,
		Status:           string(appt.Status),
		ServiceName:      appt.ServiceName,
		ServicePrice:     appt.ServicePrice,
		ConfirmationCode: appt.ConfirmationCode,
		Notes:            appt.Notes,
		Replayed:         replayed,
		CreatedAt:        appt.CreatedAt,
		UpdatedAt:        appt.UpdatedAt,
	}

	if end, err := appt.EndTime(); err == nil {
		resp.EndTime = end
	}

	return resp
}
