package identityservice

// User модель пользователя из IdentityService.
// ID непрозрачный идентификатор (UUID), выданный провайдером аутентификации.
// IsAdministrator capability-флаг: именно он, а не клиентская логика,
// определяет доступ к операциям администратора.
type User struct {
	ID              string `json:"id"`
	DisplayName     string `json:"display_name"`
	Email           string `json:"email"`
	IsAdministrator bool   `json:"is_administrator"`
}

// ErrorResponse модель ошибки от IdentityService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
