package get_available_slots

import "errors"

var (
	// ErrBarberNotFound возвращается, когда барбер не найден в каталоге
	ErrBarberNotFound = errors.New("barber not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("service not found")

	// ErrServiceNotOfferedByBarber возвращается, когда услуга принадлежит другому барберу
	ErrServiceNotOfferedByBarber = errors.New("service is not offered by this barber")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("date is too far in the future")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
