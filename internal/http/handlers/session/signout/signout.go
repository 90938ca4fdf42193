// Package signout реализует выход: Store сессии очищается.
package signout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/entitlement-gateway/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/sl"
)

// Sessions закрывает сессию.
type Sessions interface {
	Close(userUID string) bool
}

// Handler обрабатывает выход.
type Handler struct {
	log      *slog.Logger
	sessions Sessions
}

// New создает Handler.
func New(log *slog.Logger, sessions Sessions) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Закрывает сессию и очищает кэш прав доступа.
// @Tags Session
// @Produce  json
// @Success 200 {object} response.Response "Сессия закрыта"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /session [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.signout"
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

	closed := h.sessions.Close(identity.UID)
	log.Info("signed out", sl.UID(identity.UID), slog.Bool("had_session", closed))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"signed_out": true,
	}))
}
