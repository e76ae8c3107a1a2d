// Package mrtasks предоставляет маршруты и сборку основного приложения.
package mrtasks

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	premiumdowngradehandler "github.com/magabrotheeeer/mrtasks/internal/http/handlers/admin/premiumdowngrade"
	premiumupgradehandler "github.com/magabrotheeeer/mrtasks/internal/http/handlers/admin/premiumupgrade"
	"github.com/magabrotheeeer/mrtasks/internal/http/handlers/admin/userdetail"
	"github.com/magabrotheeeer/mrtasks/internal/http/handlers/admin/userslist"
	"github.com/magabrotheeeer/mrtasks/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/mrtasks/internal/http/handlers/auth/passwordforgot"
	"github.com/magabrotheeeer/mrtasks/internal/http/handlers/auth/passwordreset"
	"github.com/magabrotheeeer/mrtasks/internal/http/handlers/auth/register"
	clientcreate "github.com/magabrotheeeer/mrtasks/internal/http/handlers/client/create"
	clientlist "github.com/magabrotheeeer/mrtasks/internal/http/handlers/client/list"
	clientremove "github.com/magabrotheeeer/mrtasks/internal/http/handlers/client/remove"
	clientsearch "github.com/magabrotheeeer/mrtasks/internal/http/handlers/client/search"
	clientupdate "github.com/magabrotheeeer/mrtasks/internal/http/handlers/client/update"
	"github.com/magabrotheeeer/mrtasks/internal/http/handlers/health"
	"github.com/magabrotheeeer/mrtasks/internal/http/handlers/invoice/download"
	invoicesend "github.com/magabrotheeeer/mrtasks/internal/http/handlers/invoice/send"
	premiumstatus "github.com/magabrotheeeer/mrtasks/internal/http/handlers/premium/status"
	"github.com/magabrotheeeer/mrtasks/internal/http/handlers/profile/emailchange"
	"github.com/magabrotheeeer/mrtasks/internal/http/handlers/profile/emailverify"
	profileread "github.com/magabrotheeeer/mrtasks/internal/http/handlers/profile/read"
	profileupdate "github.com/magabrotheeeer/mrtasks/internal/http/handlers/profile/update"
	taskcreate "github.com/magabrotheeeer/mrtasks/internal/http/handlers/task/create"
	taskhide "github.com/magabrotheeeer/mrtasks/internal/http/handlers/task/hide"
	tasklist "github.com/magabrotheeeer/mrtasks/internal/http/handlers/task/list"
	taskread "github.com/magabrotheeeer/mrtasks/internal/http/handlers/task/read"
	taskremove "github.com/magabrotheeeer/mrtasks/internal/http/handlers/task/remove"
	taskreorder "github.com/magabrotheeeer/mrtasks/internal/http/handlers/task/reorder"
	taskreport "github.com/magabrotheeeer/mrtasks/internal/http/handlers/task/report"
	tasksearch "github.com/magabrotheeeer/mrtasks/internal/http/handlers/task/search"
	taskupdate "github.com/magabrotheeeer/mrtasks/internal/http/handlers/task/update"
	"github.com/magabrotheeeer/mrtasks/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mrtasks/internal/ratelimit"
	authservice "github.com/magabrotheeeer/mrtasks/internal/services/auth"
	clientservice "github.com/magabrotheeeer/mrtasks/internal/services/client"
	invoiceservice "github.com/magabrotheeeer/mrtasks/internal/services/invoice"
	premiumservice "github.com/magabrotheeeer/mrtasks/internal/services/premium"
	profileservice "github.com/magabrotheeeer/mrtasks/internal/services/profile"
	taskservice "github.com/magabrotheeeer/mrtasks/internal/services/task"
	"github.com/magabrotheeeer/mrtasks/internal/storage/repository"
)

// Services собирает сервисы, нужные для регистрации маршрутов.
type Services struct {
	Auth    *authservice.AuthService
	Task    *taskservice.TaskService
	Client  *clientservice.ClientService
	Invoice *invoiceservice.InvoiceService
	Profile *profileservice.ProfileService
	Premium *premiumservice.PremiumService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, db *repository.Storage,
	services Services, limiter *ratelimit.Limiter) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(middlewarectx.RateLimitMiddleware(logger))

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, services.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, services.Auth).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)
		r.Get("/email-verify", emailverify.New(logger, services.Profile).ServeHTTP)
		r.Post("/password-forgot", passwordforgot.New(logger, services.Profile).ServeHTTP)
		r.Post("/password-reset", passwordreset.New(logger, services.Profile).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(services.Auth, logger))

			r.With(middlewarectx.ActionLimitMiddleware(limiter, ratelimit.ActionTaskCreate, logger)).
				Post("/tasks", taskcreate.New(logger, services.Task).ServeHTTP)
			r.With(middlewarectx.ActionLimitMiddleware(limiter, ratelimit.ActionDashboard, logger)).
				Get("/tasks", tasklist.New(logger, services.Task).ServeHTTP)
			r.With(middlewarectx.ActionLimitMiddleware(limiter, ratelimit.ActionTaskSearch, logger)).
				Get("/tasks/search", tasksearch.New(logger, services.Task).ServeHTTP)
			r.Post("/tasks/reorder", taskreorder.New(logger, services.Task).ServeHTTP)
			r.Get("/tasks/{id}", taskread.New(logger, services.Task).ServeHTTP)
			r.Put("/tasks/{id}", taskupdate.New(logger, services.Task).ServeHTTP)
			r.Delete("/tasks/{id}", taskremove.New(logger, services.Task).ServeHTTP)
			r.Post("/tasks/{id}/hide", taskhide.New(logger, services.Task, true).ServeHTTP)
			r.Post("/tasks/{id}/unhide", taskhide.New(logger, services.Task, false).ServeHTTP)

			r.With(middlewarectx.ActionLimitMiddleware(limiter, ratelimit.ActionClientCreate, logger)).
				Post("/clients", clientcreate.New(logger, services.Client).ServeHTTP)
			r.Get("/clients", clientlist.New(logger, services.Client).ServeHTTP)
			r.With(middlewarectx.ActionLimitMiddleware(limiter, ratelimit.ActionClientSearch, logger)).
				Get("/clients/search", clientsearch.New(logger, services.Client).ServeHTTP)
			r.Put("/clients/{id}", clientupdate.New(logger, services.Client).ServeHTTP)
			r.Delete("/clients/{id}", clientremove.New(logger, services.Client).ServeHTTP)

			r.With(middlewarectx.ActionLimitMiddleware(limiter, ratelimit.ActionInvoiceDownload, logger)).
				Post("/invoices/download", download.New(logger, services.Invoice).ServeHTTP)
			r.With(middlewarectx.ActionLimitMiddleware(limiter, ratelimit.ActionInvoiceSend, logger)).
				Post("/invoices/send", invoicesend.New(logger, services.Invoice).ServeHTTP)

			r.Get("/profile", profileread.New(logger, services.Profile).ServeHTTP)
			r.Put("/profile", profileupdate.New(logger, services.Profile).ServeHTTP)
			r.With(middlewarectx.ActionLimitMiddleware(limiter, ratelimit.ActionEmailChange, logger)).
				Post("/profile/email", emailchange.New(logger, services.Profile).ServeHTTP)

			r.Get("/premium", premiumstatus.New(logger, services.Premium).ServeHTTP)
			r.With(middlewarectx.ActionLimitMiddleware(limiter, ratelimit.ActionReport, logger)).
				Get("/report", taskreport.New(logger, services.Task).ServeHTTP)

			// Административная группа
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/admin/premium/{useruid}",
					premiumupgradehandler.New(logger, services.Premium, services.Profile).ServeHTTP)
				r.Delete("/admin/premium/{useruid}",
					premiumdowngradehandler.New(logger, services.Premium, services.Profile).ServeHTTP)
				r.Get("/admin/users", userslist.New(logger, services.Premium).ServeHTTP)
				r.Get("/admin/users/{useruid}", userdetail.New(logger, services.Premium).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
