// Package refresh запускает сверку прав доступа по запросу клиента:
// при возвращении приложения на передний план или восстановлении покупок.
package refresh

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
)

// Data - результат сверки.
type Data struct {
	Source      models.SnapshotSource `json:"source" example:"remote"`
	Entitlement response.Entitlement  `json:"entitlement"`
	AutoRenew   bool                  `json:"auto_renew"`
	Status      string                `json:"subscription_status,omitempty" example:"active"`
}

// Sessions открывает сессию и выдаёт её Gate.
type Sessions interface {
	Open(userUID string) *store.Store
	Gate(userUID string) *gate.Gate
}

// Reconciler сверяет права доступа.
type Reconciler interface {
	Reconcile(ctx context.Context, identity models.UserIdentity) models.EntitlementSnapshot
}

// Handler обрабатывает запрос на сверку.
type Handler struct {
	log        *slog.Logger
	sessions   Sessions
	reconciler Reconciler
}

// New создает Handler.
func New(log *slog.Logger, sessions Sessions, reconciler Reconciler) *Handler {
	return &Handler{log: log, sessions: sessions, reconciler: reconciler}
}

// ServeHTTP godoc
// @Summary Сверить права доступа
// @Description Сверяет подписку с удалённым валидатором, при его недоступности с последней сохранённой записью.
// @Tags Entitlements
// @Produce  json
// @Success 200 {object} response.Response{data=Data} "Сверка выполнена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /entitlements/refresh [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.refresh"
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

	// После перезапуска шлюза сессия могла пропасть, токен же ещё действует.
	h.sessions.Open(identity.UID)
	snap := h.reconciler.Reconcile(r.Context(), identity)
	log.Info("entitlement refreshed",
		sl.UID(identity.UID),
		slog.String("source", string(snap.Source)),
		slog.Bool("premium", snap.IsPremiumUser),
	)

	data := Data{
		Source:      snap.Source,
		Entitlement: response.EntitlementFrom(h.sessions.Gate(identity.UID)),
	}
	if snap.Record != nil {
		data.AutoRenew = snap.Record.AutoRenew
		data.Status = string(snap.Record.Status)
	}
	render.JSON(w, r, response.StatusOKWithData(data))
}
