package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/entitlement-gateway/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/sl"
)

// Checker проверяет готовность зависимости.
type Checker interface {
	CheckDatabaseReady(ctx context.Context) error
}

type Handler struct {
	log      *slog.Logger
	database Checker
	sessions func() int
}

// New создает Handler. database и sessions могут быть nil.
func New(log *slog.Logger, database Checker, sessions func() int) *Handler {
	return &Handler{
		log:      log,
		database: database,
		sessions: sessions,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	data := map[string]any{"status": "ok"}
	if h.sessions != nil {
		data["sessions"] = h.sessions()
	}
	if h.database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.database.CheckDatabaseReady(ctx); err != nil {
			h.log.Error("database is not ready", slog.String("op", op), sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("database is not ready"))
			return
		}
	}
	render.JSON(w, r, response.StatusOKWithData(data))
}
