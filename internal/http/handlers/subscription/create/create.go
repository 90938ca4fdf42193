// Package create оформляет подписку на тариф.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/entitlement-gateway/internal/entitlement/gate"
	"github.com/magabrotheeeer/entitlement-gateway/internal/entitlement/store"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/reconciler"
)

// Request - тариф и токен платёжного метода, полученный клиентом у
// платёжного провайдера.
type Request struct {
	PlanID          string `json:"plan_id" validate:"required,max=64" example:"monthly_premium"`
	PaymentMethodID string `json:"payment_method_id" validate:"required,max=255" example:"pm_card_visa"`
}

// Sessions открывает сессию и выдаёт её Gate.
type Sessions interface {
	Open(userUID string) *store.Store
	Gate(userUID string) *gate.Gate
}

// Service оформляет подписку.
type Service interface {
	CreateSubscription(ctx context.Context, identity models.UserIdentity, planID, paymentMethodID string) (models.EntitlementSnapshot, error)
}

// Handler обрабатывает оформление подписки.
type Handler struct {
	log      *slog.Logger
	sessions Sessions
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, sessions Sessions, service Service) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оформить подписку
// @Description Создаёт подписку через удалённую функцию и сверяет права доступа. Квитанция отправляется на email асинхронно.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body Request true "Тариф и платёжный метод"
// @Success 200 {object} response.Response{data=response.MutationData} "Подписка оформлена"
// @Failure 400 {object} response.Response{data=reconciler.Result} "Некорректные данные или отказ платежа"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 503 {object} response.Response{data=reconciler.Result} "Удалённые функции недоступны"
// @Router /subscriptions [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	h.sessions.Open(identity.UID)
	if _, err := h.service.CreateSubscription(r.Context(), identity, req.PlanID, req.PaymentMethodID); err != nil {
		res := reconciler.ResultOf(reconciler.ActionCreate, err)
		log.Warn("create subscription failed", sl.Err(err), slog.String("kind", string(res.Kind)))
		w.WriteHeader(response.MutationHTTPStatus(res.Kind))
		render.JSON(w, r, response.MutationFailed(res))
		return
	}

	log.Info("subscription created", slog.String("plan_id", req.PlanID))
	render.JSON(w, r, response.StatusOKWithData(response.MutationData{
		Result:      reconciler.ResultOf(reconciler.ActionCreate, nil),
		Entitlement: response.EntitlementFrom(h.sessions.Gate(identity.UID)),
	}))
}
