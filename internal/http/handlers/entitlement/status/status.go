// Package status отдаёт права доступа из Store сессии без обращения к
// удалённым функциям.
package status

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/entitlement-gateway/internal/entitlement/gate"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/response"
)

// Data - права доступа и, если запрошена функция, разрешена ли она.
type Data struct {
	response.Entitlement
	Feature   string `json:"feature,omitempty"`
	Permitted *bool  `json:"permitted,omitempty"`
}

// Gates выдаёт Gate сессии пользователя.
type Gates interface {
	Gate(userUID string) *gate.Gate
}

// Handler обрабатывает чтение прав доступа.
type Handler struct {
	log   *slog.Logger
	gates Gates
}

// New создает Handler.
func New(log *slog.Logger, gates Gates) *Handler {
	return &Handler{log: log, gates: gates}
}

// ServeHTTP godoc
// @Summary Текущие права доступа
// @Description Возвращает последний сверенный снимок прав. Не обращается к удалённым функциям.
// @Tags Entitlements
// @Produce  json
// @Param feature query string false "Функция, доступ к которой нужно проверить"
// @Success 200 {object} response.Response{data=Data} "Права доступа"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /entitlements [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.status"
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

	g := h.gates.Gate(identity.UID)
	data := Data{Entitlement: response.EntitlementFrom(g)}
	if feature := r.URL.Query().Get("feature"); feature != "" {
		permitted := g.Permits(feature)
		data.Feature = feature
		data.Permitted = &permitted
	}
	render.JSON(w, r, response.StatusOKWithData(data))
}
