// Package autorenew включает и отключает автопродление подписки.
package autorenew

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

// Request - новое значение автопродления. Указатель отличает false от
// отсутствующего поля.
type Request struct {
	AutoRenew *bool `json:"auto_renew" validate:"required" example:"false"`
}

// Sessions открывает сессию и выдаёт её Gate.
type Sessions interface {
	Open(userUID string) *store.Store
	Gate(userUID string) *gate.Gate
}

// Service переключает автопродление.
type Service interface {
	ToggleAutoRenew(ctx context.Context, identity models.UserIdentity, enabled bool) (models.EntitlementSnapshot, error)
}

// Data - итог переключения.
type Data struct {
	response.MutationData
	AutoRenew bool `json:"auto_renew"`
}

// Handler обрабатывает переключение автопродления.
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
// @Summary Переключить автопродление
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body Request true "Новое значение"
// @Success 200 {object} response.Response{data=Data} "Автопродление изменено"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.Response{data=reconciler.Result} "Активной подписки нет"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.Response{data=reconciler.Result} "Удалённые функции недоступны"
// @Router /subscriptions/auto-renew [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.autorenew"
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
	enabled := *req.AutoRenew

	h.sessions.Open(identity.UID)
	snap, err := h.service.ToggleAutoRenew(r.Context(), identity, enabled)
	if err != nil {
		res := reconciler.ResultOf(reconciler.ActionToggleAutoRenew, err)
		log.Warn("toggle auto-renew failed", sl.Err(err), slog.String("kind", string(res.Kind)))
		w.WriteHeader(response.MutationHTTPStatus(res.Kind))
		render.JSON(w, r, response.MutationFailed(res))
		return
	}

	// Сверка могла вернуть запасную запись, ещё не знающую о переключении.
	current := enabled
	if snap.Record != nil && snap.Source == models.SourceRemote {
		current = snap.Record.AutoRenew
	}
	log.Info("auto-renew toggled", slog.Bool("requested", enabled), slog.Bool("current", current))
	render.JSON(w, r, response.StatusOKWithData(Data{
		MutationData: response.MutationData{
			Result:      reconciler.ResultOf(reconciler.ActionToggleAutoRenew, nil),
			Entitlement: response.EntitlementFrom(h.sessions.Gate(identity.UID)),
		},
		AutoRenew: current,
	}))
}
