// Package signin реализует вход пользователя: открывает сессию, сверяет
// права доступа и выдаёт токен сессии.
package signin

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
	"github.com/magabrotheeeer/entitlement-gateway/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/credentials"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/jwt"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

// Request - ID-токен, выданный провайдером аутентификации.
type Request struct {
	IDToken string `json:"id_token" validate:"required"`
}

// Data - ответ при успешном входе.
type Data struct {
	Token       string               `json:"token"`
	UID         string               `json:"uid"`
	Entitlement response.Entitlement `json:"entitlement"`
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

// TokenMaker выпускает токен сессии.
type TokenMaker interface {
	GenerateToken(identity models.UserIdentity, providerToken string) (string, error)
}

// Handler обрабатывает вход.
type Handler struct {
	log        *slog.Logger
	sessions   Sessions
	reconciler Reconciler
	tokens     TokenMaker
	validate   *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, sessions Sessions, reconciler Reconciler, tokens TokenMaker) *Handler {
	return &Handler{
		log:        log,
		sessions:   sessions,
		reconciler: reconciler,
		tokens:     tokens,
		validate:   validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Открывает сессию по ID-токену провайдера, сверяет подписку и возвращает токен сессии.
// @Tags Session
// @Accept  json
// @Produce  json
// @Param request body Request true "ID-токен провайдера"
// @Success 200 {object} response.Response{data=Data} "Сессия открыта"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Некорректный ID-токен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.signin"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	identity, err := jwt.IdentityFromProviderToken(req.IDToken)
	if err != nil {
		log.Warn("invalid id token", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid id token"))
		return
	}
	log = log.With(sl.UID(identity.UID))

	h.sessions.Open(identity.UID)
	ctx := credentials.WithToken(r.Context(), req.IDToken)
	snap := h.reconciler.Reconcile(ctx, identity)

	token, err := h.tokens.GenerateToken(identity, req.IDToken)
	if err != nil {
		log.Error("failed to generate session token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to open session"))
		return
	}

	log.Info("signed in", slog.String("source", string(snap.Source)), slog.Bool("premium", snap.IsPremiumUser))
	render.JSON(w, r, response.StatusOKWithData(Data{
		Token:       token,
		UID:         identity.UID,
		Entitlement: response.EntitlementFrom(h.sessions.Gate(identity.UID)),
	}))
}
