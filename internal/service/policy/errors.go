package policy

import "errors"

var (
	// ErrPolicyNotFound возвращается, когда политика не найдена
	ErrPolicyNotFound = errors.New("policy not found")

	// ErrBarberNotFound возвращается, когда барбер не найден в каталоге
	ErrBarberNotFound = errors.New("barber not found")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
