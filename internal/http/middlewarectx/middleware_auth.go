// Package middlewarectx содержит HTTP middleware: проверку токена сессии и
// ограничение частоты мутаций.
//
// JWTMiddleware проверяет токен в заголовке Authorization и кладёт в контекст
// идентичность пользователя и токен провайдера, который затем пересылается
// удалённым функциям.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/entitlement-gateway/internal/http/response"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/credentials"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/jwt"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID - ключ идентификатора пользователя в контексте.
	UserUID Key = "user_uid"
	// Email - ключ email пользователя в контексте.
	Email Key = "email"
)

// TokenParser проверяет токен сессии.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// IdentityFrom возвращает идентичность, положенную JWTMiddleware.
func IdentityFrom(ctx context.Context) (models.UserIdentity, bool) {
	uid, ok := ctx.Value(UserUID).(string)
	if !ok || uid == "" {
		return models.UserIdentity{}, false
	}
	email, _ := ctx.Value(Email).(string)
	return models.UserIdentity{UID: uid, Email: email}, true
}

// WithIdentity кладёт идентичность в контекст.
func WithIdentity(ctx context.Context, identity models.UserIdentity) context.Context {
	ctx = context.WithValue(ctx, UserUID, identity.UID)
	return context.WithValue(ctx, Email, identity.Email)
}

// JWTMiddleware возвращает middleware, который пропускает запрос только с
// валидным токеном сессии, иначе отвечает 401 Unauthorized.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			ctx := WithIdentity(r.Context(), claims.Identity())
			ctx = credentials.WithToken(ctx, claims.ProviderToken)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
