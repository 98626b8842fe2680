// Package middleware промежуточные обработчики HTTP: идентификация
// актора и метрики запросов.
package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/avenirbook/scheduling-engine/internal/api/handlers"
)

// HeaderActorID заголовок с идентификатором актора.
// Аутентификацию выполняет API gateway, сюда приходит уже проверенный ID.
const HeaderActorID = "X-Actor-ID"

const msgUnauthorized = "не указан идентификатор пользователя"

type actorCtxKey struct{}

// Auth извлекает идентификатор актора из заголовка и кладет его в контекст.
// Запросы без корректного заголовка отклоняются с 401.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderActorID)
		actorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || actorID <= 0 {
			handlers.RespondUnauthorized(w, msgUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), actorCtxKey{}, actorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorIDFromContext возвращает идентификатор актора из контекста.
// Второе значение false означает, что запрос прошел мимо Auth.
func ActorIDFromContext(ctx context.Context) (int64, bool) {
	actorID, ok := ctx.Value(actorCtxKey{}).(int64)
	return actorID, ok
}
