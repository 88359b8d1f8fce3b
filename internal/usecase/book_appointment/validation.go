package book_appointment

import (
	"fmt"
	"time"

	"github.com/sharpcut/booking-service/internal/domain"
	"github.com/sharpcut/booking-service/internal/integrations/catalogservice"
	"github.com/sharpcut/booking-service/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CustomerID == "" {
		return fmt.Errorf("%w: customerID is required", ErrInvalidInput)
	}

	if req.BarberID <= 0 {
		return fmt.Errorf("%w: barberID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// Проверяем, что время начала указано
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	// Валидируем формат времени
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if req.IdempotencyKey != nil {
		if *req.IdempotencyKey == "" {
			return fmt.Errorf("%w: idempotency key must not be empty", ErrInvalidInput)
		}
		if len(*req.IdempotencyKey) > domain.MaxIdempotencyKeyLength {
			return fmt.Errorf("%w: idempotency key must not exceed %d characters", ErrInvalidInput, domain.MaxIdempotencyKeyLength)
		}
	}

	return nil
}

// validateDate проверяет, что дата подходит для записи
func validateDate(date time.Time, now time.Time, advanceBookingDays int) error {
	// Проверяем, что дата не в прошлом
	if isDateInPast(date, now) {
		return ErrInvalidDate
	}

	// Если advanceBookingDays = 0, нет ограничений на дату
	if advanceBookingDays == 0 {
		return nil
	}

	// Проверяем, что дата не превышает ограничение advanceBookingDays
	maxDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, advanceBookingDays)

	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	if dateOnly.After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}

// validateBookingTime проверяет, что запись не нарушает minBookingNoticeMinutes
func validateBookingTime(
	date time.Time,
	startTime types.TimeString,
	now time.Time,
	minBookingNoticeMinutes int,
) error {
	// Если дата записи не сегодня, проверка не нужна
	if !isSameDay(date, now) {
		return nil
	}

	// Вычисляем минимальное допустимое время
	currentTime := types.NewTimeString(now)
	minAllowedTime, err := currentTime.AddMinutes(minBookingNoticeMinutes)
	if err != nil {
		return fmt.Errorf("%w: failed to calculate min allowed time: %v", ErrInternal, err)
	}

	// Проверяем, что время начала не раньше минимального
	if startTime.IsBefore(minAllowedTime) {
		return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, minBookingNoticeMinutes)
	}

	return nil
}

// validateSlotAlignment проверяет, что время начала попадает на сетку слотов:
// смещение от открытия кратно slotGranularityMinutes
func validateSlotAlignment(startTime types.TimeString, openTime types.TimeString, granularityMinutes int) error {
	startMinutes, err := startTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}

	openMinutes, err := openTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: invalid open time: %v", ErrInternal, err)
	}

	if startMinutes < openMinutes || (startMinutes-openMinutes)%granularityMinutes != 0 {
		return fmt.Errorf("%w: startTime must align to the %d-minute slot grid", ErrInvalidTimeSlot, granularityMinutes)
	}

	return nil
}

// validateWithinWorkingHours проверяет, что интервал [start, start+duration]
// целиком лежит в рабочих часах барбера
func validateWithinWorkingHours(
	startTime types.TimeString,
	durationMinutes int,
	schedule catalogservice.DaySchedule,
) error {
	if !schedule.IsOpen || schedule.OpenTime == nil || schedule.CloseTime == nil {
		return ErrBarberClosed
	}

	openTime := types.TimeString(*schedule.OpenTime)
	closeTime := types.TimeString(*schedule.CloseTime)

	if startTime.IsBefore(openTime) {
		return fmt.Errorf("%w: barber opens at %s", ErrInvalidTimeSlot, openTime)
	}

	endTime, err := startTime.AddMinutes(durationMinutes)
	if err != nil {
		return fmt.Errorf("%w: service does not fit into the working day", ErrInvalidTimeSlot)
	}

	if endTime.IsAfter(closeTime) {
		return fmt.Errorf("%w: service ends after closing time %s", ErrInvalidTimeSlot, closeTime)
	}

	return nil
}

// hasOverlappingAppointment проверяет, пересекается ли интервал
// [startTime, startTime+durationMinutes) с какой-либо из записей.
// Интервалы полуоткрытые: совпадение конца одной записи с началом другой
// пересечением не считается
func hasOverlappingAppointment(
	startTime types.TimeString,
	durationMinutes int,
	appointments []*domain.Appointment,
) (bool, error) {
	slotEnd, err := startTime.AddMinutes(durationMinutes)
	if err != nil {
		return false, err
	}

	for _, appt := range appointments {
		// Терминальные записи не блокируют слоты
		if !appt.IsUpcoming() {
			continue
		}

		apptEnd, err := appt.EndTime()
		if err != nil {
			// Если не можем вычислить конец записи, пропускаем
			continue
		}

		if appt.StartTime.IsBefore(slotEnd) && apptEnd.IsAfter(startTime) {
			return true, nil
		}
	}

	return false, nil
}

// getWorkingHoursForDay возвращает расписание работы барбера на указанный день недели
func getWorkingHoursForDay(barber *catalogservice.Barber, date time.Time) catalogservice.DaySchedule {
	weekday := date.Weekday()

	switch weekday {
	case time.Monday:
		return barber.WorkingHours.Monday
	case time.Tuesday:
		return barber.WorkingHours.Tuesday
	case time.Wednesday:
		return barber.WorkingHours.Wednesday
	case time.Thursday:
		return barber.WorkingHours.Thursday
	case time.Friday:
		return barber.WorkingHours.Friday
	case time.Saturday:
		return barber.WorkingHours.Saturday
	case time.Sunday:
		return barber.WorkingHours.Sunday
	default:
		return catalogservice.DaySchedule{IsOpen: false}
	}
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	// Обнуляем время, чтобы сравнивать только даты
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
