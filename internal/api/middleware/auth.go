package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/sharpcut/booking-service/internal/api/handlers"
)

// HeaderUserID заголовок с идентификатором пользователя.
// Аутентификацию выполняет внешний шлюз, сервис доверяет заголовку
const HeaderUserID = "X-User-ID"

const msgMissingUserID = "отсутствует или некорректен заголовок X-User-ID"

type contextKey string

const userIDKey contextKey = "userID"

// Auth извлекает ID пользователя из заголовка и кладет его в контекст запроса.
// Запросы без валидного UUID в заголовке отклоняются с 401
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(HeaderUserID)
		if _, err := uuid.Parse(userID); err != nil {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID возвращает ID пользователя из контекста запроса
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}
