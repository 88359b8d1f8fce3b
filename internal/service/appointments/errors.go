package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrCannotCancel возвращается, когда запись уже в терминальном статусе
	ErrCannotCancel = errors.New("appointment cannot be cancelled")

	// ErrCancellationWindowClosed возвращается, когда дедлайн отмены прошёл.
	// Администратор может отменять и после дедлайна.
	ErrCancellationWindowClosed = errors.New("cancellation window closed")

	// ErrCannotComplete возвращается, когда запись уже в терминальном статусе
	ErrCannotComplete = errors.New("appointment cannot be completed")

	// ErrNotElapsed возвращается при попытке завершить запись, время которой
	// ещё не прошло
	ErrNotElapsed = errors.New("appointment has not elapsed yet")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
