package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mrtasks/internal/http/response"
	"github.com/magabrotheeeer/mrtasks/internal/ratelimit"
)

// ClientIP возвращает IP клиента без порта из RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ActionLimitMiddleware проверяет часовую квоту пользователя на действие.
// Отказ фиксируется лимитером в журнале и возвращается как 429.
// Middleware должен стоять после JWTMiddleware: имя пользователя берётся из контекста.
func ActionLimitMiddleware(limiter *ratelimit.Limiter, action ratelimit.Action,
	log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, ok := r.Context().Value(User).(string)
			if !ok || username == "" {
				log.Error("username not found in context")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("error.unauthorized"))
				return
			}

			if !limiter.TryConsume(action, username, ClientIP(r)) {
				log.Warn("action quota exhausted",
					slog.String("action", string(action)),
					slog.String("username", username))
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error(action.MessageKey()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
