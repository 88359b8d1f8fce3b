package book_appointment

import "errors"

var (
	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("book_appointment: user not found")

	// ErrBarberNotFound возвращается, когда барбер не найден в каталоге
	ErrBarberNotFound = errors.New("book_appointment: barber not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("book_appointment: service not found")

	// ErrServiceNotOfferedByBarber возвращается, когда услуга принадлежит другому барберу
	ErrServiceNotOfferedByBarber = errors.New("book_appointment: service is not offered by this barber")

	// ErrInvalidDate возвращается при некорректной дате записи
	ErrInvalidDate = errors.New("book_appointment: invalid appointment date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("book_appointment: date is too far in the future")

	// ErrBarberClosed возвращается, когда барбер не работает в указанную дату
	ErrBarberClosed = errors.New("book_appointment: barber does not work on this date")

	// ErrSlotTaken возвращается, когда выбранный интервал пересекается с существующей записью
	ErrSlotTaken = errors.New("book_appointment: slot is already taken")

	// ErrInvalidTimeSlot возвращается, когда время некорректно: не выровнено по
	// сетке слотов или услуга не помещается в рабочие часы
	ErrInvalidTimeSlot = errors.New("book_appointment: invalid time slot")

	// ErrTooLateToBook возвращается, когда запись нарушает minBookingNoticeMinutes
	ErrTooLateToBook = errors.New("book_appointment: too late to book this slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("book_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("book_appointment: internal error")
)
