package get_available_slots

import (
	"time"

	"github.com/sharpcut/booking-service/internal/domain"
	"github.com/sharpcut/booking-service/internal/integrations/catalogservice"
	"github.com/sharpcut/booking-service/pkg/types"
)

// generateCandidateStarts генерирует всевозможные времена начала на день.
// Кандидаты идут от открытия с шагом slotGranularity; кандидат отбрасывается,
// если услуга длительностью serviceDuration не помещается до закрытия.
// Затем кандидаты фильтруются с учетом текущего времени и минимального
// времени до записи
func generateCandidateStarts(
	workingHours catalogservice.DaySchedule,
	slotGranularity int,
	serviceDuration int,
	requestDate time.Time,
	now time.Time,
	minBookingNoticeMinutes int,
) ([]types.TimeString, error) {
	// Прошедшая дата - слотов нет
	if isDateInPast(requestDate, now) {
		return []types.TimeString{}, nil
	}

	// Если барбер не работает в этот день
	if !workingHours.IsOpen || workingHours.OpenTime == nil || workingHours.CloseTime == nil {
		return []types.TimeString{}, nil
	}

	// Парсим время открытия и закрытия
	openTime, err := types.NewTimeStringFromString(*workingHours.OpenTime)
	if err != nil {
		return nil, err
	}

	closeTime, err := types.NewTimeStringFromString(*workingHours.CloseTime)
	if err != nil {
		return nil, err
	}

	// Шаг 1: Генерируем все кандидаты от открытия с шагом slotGranularity,
	// в которые услуга помещается целиком
	allStarts := make([]types.TimeString, 0)
	current := openTime

	for current.IsBefore(closeTime) {
		serviceEnd, err := current.AddMinutes(serviceDuration)
		if err != nil {
			break
		}
		if serviceEnd.IsAfter(closeTime) {
			break
		}

		allStarts = append(allStarts, current)
		current, err = current.AddMinutes(slotGranularity)
		if err != nil {
			return nil, err
		}
	}

	// Шаг 2: Если дата запроса НЕ сегодня - возвращаем всех кандидатов
	if !isSameDay(requestDate, now) {
		return allStarts, nil
	}

	// Шаг 3: Сегодняшняя дата - фильтруем кандидатов по времени.
	// Вычисляем минимальное допустимое время начала
	currentTime := types.NewTimeString(now)
	minAllowedTime, err := currentTime.AddMinutes(minBookingNoticeMinutes)
	if err != nil {
		return nil, err
	}

	available := make([]types.TimeString, 0)
	for _, start := range allStarts {
		if !start.IsBefore(minAllowedTime) {
			available = append(available, start)
		}
	}

	return available, nil
}

// filterFreeSlots оставляет только кандидатов, не пересекающихся ни с одной
// предстоящей записью. У барбера одно кресло: любое пересечение делает
// кандидата недоступным
func filterFreeSlots(
	starts []types.TimeString,
	serviceDuration int,
	appointments []*domain.Appointment,
) []Slot {
	result := make([]Slot, 0, len(starts))

	for _, start := range starts {
		if overlapsAnyAppointment(start, serviceDuration, appointments) {
			continue
		}

		end, err := start.AddMinutes(serviceDuration)
		if err != nil {
			continue
		}

		result = append(result, Slot{
			StartTime:       start,
			EndTime:         end,
			DurationMinutes: serviceDuration,
		})
	}

	return result
}

// overlapsAnyAppointment проверяет, пересекается ли кандидат с какой-либо записью.
// Пересечение есть только если интервалы действительно накладываются друг на друга.
// Если запись заканчивается ровно там, где начинается кандидат (или наоборот) - это НЕ пересечение
//
// Примеры:
// - Кандидат 11:30-12:00, запись 11:20-11:40 → ЕСТЬ пересечение (11:30-11:40)
// - Кандидат 11:30-12:00, запись 11:00-11:30 → НЕТ пересечения (граничат)
// - Кандидат 11:30-12:00, запись 12:00-12:30 → НЕТ пересечения (граничат)
func overlapsAnyAppointment(start types.TimeString, serviceDuration int, appointments []*domain.Appointment) bool {
	end, err := start.AddMinutes(serviceDuration)
	if err != nil {
		// Если не можем вычислить конец кандидата, считаем что пересечений нет
		return false
	}

	for _, appt := range appointments {
		// Терминальные записи не блокируют слоты
		if !appt.IsUpcoming() {
			continue
		}

		apptStart := appt.StartTime
		apptEnd, err := appt.EndTime()
		if err != nil {
			// Если не можем вычислить конец записи, пропускаем
			continue
		}

		// Используем строгие неравенства (IsBefore, IsAfter), чтобы граничные
		// случаи не считались пересечением
		if apptStart.IsBefore(end) && apptEnd.IsAfter(start) {
			return true
		}
	}

	return false
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
