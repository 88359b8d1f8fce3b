package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrDuplicateIdempotencyKey возвращается при вставке с уже использованным
	// idempotency-ключом. Вызывающая сторона должна перечитать исходную запись
	// по ключу и вернуть её вместо создания дубликата.
	ErrDuplicateIdempotencyKey = errors.New("appointment.repository: idempotency key already used")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса.
	// Исходная ошибка драйвера остаётся в цепочке: менеджер транзакций
	// распознаёт конфликт сериализации (40001) через errors.As
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса.
	// Исходная ошибка драйвера остаётся в цепочке
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
