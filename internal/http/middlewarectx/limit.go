package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/mrtasks/internal/http/response"
)

// Глобальный limiter от всплесков трафика, общий для всех маршрутов.
// Пользовательские часовые квоты на действия проверяются в обработчиках.
var limiter = rate.NewLimiter(100, 200)

// RateLimitMiddleware отбрасывает запросы сверх глобального лимита сервера.
func RateLimitMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests")
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("error.rate.limit.global"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
