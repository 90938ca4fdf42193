// Package gateway собирает HTTP-шлюз прав доступа: маршруты, зависимости и
// жизненный цикл серверов.
package gateway

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/entitlement-gateway/internal/http/handlers/entitlement/refresh"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/handlers/entitlement/status"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/handlers/health"
	planslist "github.com/magabrotheeeer/entitlement-gateway/internal/http/handlers/plans/list"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/handlers/session/signin"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/handlers/session/signout"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/handlers/subscription/autorenew"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/handlers/subscription/cancel"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/jwt"
	"github.com/magabrotheeeer/entitlement-gateway/internal/plans"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/reconciler"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/session"
)

// Deps - зависимости обработчиков.
type Deps struct {
	Sessions   *session.Manager
	Reconciler *reconciler.Reconciler
	Tokens     jwt.Maker
	Catalog    *plans.Catalog
	Database   health.Checker
	Gatherer   prometheus.Gatherer

	MutationRPS   float64
	MutationBurst int
}

// RegisterRoutes регистрирует все маршруты шлюза.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/session", signin.New(logger, deps.Sessions, deps.Reconciler, deps.Tokens).ServeHTTP)
		r.Get("/plans", planslist.New(logger, deps.Catalog).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(deps.Tokens, logger))
			r.Delete("/session", signout.New(logger, deps.Sessions).ServeHTTP)
			r.Get("/entitlements", status.New(logger, deps.Sessions).ServeHTTP)
			r.Post("/entitlements/refresh", refresh.New(logger, deps.Sessions, deps.Reconciler).ServeHTTP)

			// Мутации ходят в платёжный провайдер, их частота ограничена.
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(logger, deps.MutationRPS, deps.MutationBurst))
				r.Post("/subscriptions", create.New(logger, deps.Sessions, deps.Reconciler).ServeHTTP)
				r.Delete("/subscriptions", cancel.New(logger, deps.Sessions, deps.Reconciler).ServeHTTP)
				r.Put("/subscriptions/auto-renew", autorenew.New(logger, deps.Sessions, deps.Reconciler).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, deps.Database, deps.Sessions.Count).ServeHTTP)
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
}
