// Package list отдаёт каталог тарифов. Маршрут публичный.
package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/entitlement-gateway/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

// Catalog возвращает тарифы в порядке отображения.
type Catalog interface {
	List() []models.SubscriptionPlan
}

// Plan - тариф в ответе API.
type Plan struct {
	models.SubscriptionPlan
	PriceMinorUnits int64 `json:"price_minor_units" example:"499"`
}

// Handler обрабатывает запрос каталога.
type Handler struct {
	log     *slog.Logger
	catalog Catalog
}

// New создает Handler.
func New(log *slog.Logger, catalog Catalog) *Handler {
	return &Handler{log: log, catalog: catalog}
}

// ServeHTTP godoc
// @Summary Каталог тарифов
// @Tags Plans
// @Produce  json
// @Success 200 {object} response.Response{data=[]Plan} "Тарифы"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	list := h.catalog.List()
	out := make([]Plan, 0, len(list))
	for _, p := range list {
		out = append(out, Plan{SubscriptionPlan: p, PriceMinorUnits: p.PriceMinorUnits()})
	}
	log.Debug("plans listed", slog.Int("count", len(out)))
	render.JSON(w, r, response.StatusOKWithData(out))
}
