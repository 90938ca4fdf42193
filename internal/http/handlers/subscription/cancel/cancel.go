// Package cancel отменяет продление подписки. Доступ сохраняется до конца
// оплаченного периода.
package cancel

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/entitlement-gateway/internal/entitlement/gate"
	"github.com/magabrotheeeer/entitlement-gateway/internal/entitlement/store"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/reconciler"
)

// Sessions открывает сессию и выдаёт её Gate.
type Sessions interface {
	Open(userUID string) *store.Store
	Gate(userUID string) *gate.Gate
}

// Service отменяет подписку.
type Service interface {
	CancelSubscription(ctx context.Context, identity models.UserIdentity) (models.EntitlementSnapshot, error)
}

// Handler обрабатывает отмену подписки.
type Handler struct {
	log      *slog.Logger
	sessions Sessions
	service  Service
}

// New создает Handler.
func New(log *slog.Logger, sessions Sessions, service Service) *Handler {
	return &Handler{log: log, sessions: sessions, service: service}
}

// ServeHTTP godoc
// @Summary Отменить подписку
// @Description Отключает продление подписки. Повторная отмена не является ошибкой.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} response.Response{data=response.MutationData} "Подписка отменена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.Response{data=reconciler.Result} "Активной подписки нет"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 503 {object} response.Response{data=reconciler.Result} "Удалённые функции недоступны"
// @Router /subscriptions [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}
	log = log.With(sl.UID(identity.UID))

	h.sessions.Open(identity.UID)
	if _, err := h.service.CancelSubscription(r.Context(), identity); err != nil {
		res := reconciler.ResultOf(reconciler.ActionCancel, err)
		log.Warn("cancel subscription failed", sl.Err(err), slog.String("kind", string(res.Kind)))
		w.WriteHeader(response.MutationHTTPStatus(res.Kind))
		render.JSON(w, r, response.MutationFailed(res))
		return
	}

	log.Info("subscription canceled")
	render.JSON(w, r, response.StatusOKWithData(response.MutationData{
		Result:      reconciler.ResultOf(reconciler.ActionCancel, nil),
		Entitlement: response.EntitlementFrom(h.sessions.Gate(identity.UID)),
	}))
}
