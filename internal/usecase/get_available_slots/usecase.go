package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharpcut/booking-service/internal/domain"
	policyRepo "github.com/sharpcut/booking-service/internal/infra/storage/policy"
	catalogClient "github.com/sharpcut/booking-service/internal/integrations/catalogservice"
)

// UseCase use case для получения доступных слотов записи
type UseCase struct {
	apptRepo      AppointmentRepository
	policyRepo    PolicyRepository
	catalogClient CatalogServiceClient
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	apptRepo AppointmentRepository,
	policyRepo PolicyRepository,
	catalogClient CatalogServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:      apptRepo,
		policyRepo:    policyRepo,
		catalogClient: catalogClient,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case получения доступных слотов
// Кандидаты генерируются с шагом slotGranularityMinutes действующей политики;
// слот доступен, если услуга целиком помещается в рабочие часы барбера и не
// пересекается ни с одной предстоящей записью
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: barber=%d, service=%d, date=%s",
		req.BarberID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем барбера
	barber, err := uc.catalogClient.GetBarber(ctx, req.BarberID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrBarberNotFound) {
			uc.logger.Warn("GetAvailableSlots: barber id=%d not found", req.BarberID)
			return nil, ErrBarberNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get barber id=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: failed to get barber: %v", ErrInternal, err)
	}

	// 4. Получаем услугу (её длительность определяет размер слота)
	service, err := uc.catalogClient.GetService(ctx, req.BarberID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 5. Проверяем, что услуга принадлежит этому барберу
	if service.BarberID != req.BarberID {
		uc.logger.Warn("GetAvailableSlots: service id=%d belongs to barber id=%d, not %d",
			req.ServiceID, service.BarberID, req.BarberID)
		return nil, ErrServiceNotOfferedByBarber
	}

	// 6. Получаем действующую политику барбера
	policy, err := uc.policyRepo.GetEffective(ctx, req.BarberID)
	if err != nil {
		if !errors.Is(err, policyRepo.ErrPolicyNotFound) {
			uc.logger.Error("GetAvailableSlots: failed to get policy: %v", err)
			return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
		}
		// Нет ни персональной, ни общей политики - применяем дефолтную
		policy = domain.DefaultBookingPolicy()
		uc.logger.Info("GetAvailableSlots: using default policy for barber=%d", req.BarberID)
	}

	// 7. Валидация даты с учетом политики
	if err := validateDate(req.Date, now, policy.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 8. Получаем рабочие часы барбера на указанную дату
	workingHours := getWorkingHoursForDay(barber, req.Date)
	if !workingHours.IsOpen {
		uc.logger.Info("GetAvailableSlots: barber=%d does not work on %s", req.BarberID, req.Date.Format(domain.DateFormat))
		return &Response{
			Date:      req.Date,
			BarberID:  req.BarberID,
			ServiceID: req.ServiceID,
			Slots:     []Slot{},
		}, nil
	}

	// 9. Генерируем кандидатов на время начала
	starts, err := generateCandidateStarts(
		workingHours,
		policy.SlotGranularityMinutes,
		service.DurationMinutes,
		req.Date,
		now,
		policy.MinBookingNoticeMinutes,
	)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate candidate starts: %v", err)
		return nil, fmt.Errorf("%w: failed to generate candidate starts: %v", ErrInternal, err)
	}

	// 10. Получаем предстоящие записи барбера на эту дату
	filter := domain.BarberAppointmentsFilter{
		BarberID:        req.BarberID,
		StartDate:       &req.Date,
		EndDate:         &req.Date,
		IncludeTerminal: false, // Терминальные записи не блокируют слоты
	}

	appointments, err := uc.apptRepo.GetByBarberWithFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 11. Оставляем только свободные слоты
	slots := filterFreeSlots(starts, service.DurationMinutes, appointments)

	uc.logger.Info("GetAvailableSlots: %d slots available for barber=%d, service=%d, date=%s",
		len(slots), req.BarberID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:      req.Date,
		BarberID:  req.BarberID,
		ServiceID: req.ServiceID,
		Slots:     slots,
	}, nil
}
