package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

// ErrMissingSubject возвращается для токена без идентификатора пользователя.
var ErrMissingSubject = errors.New("token has no subject")

// CustomClaims хранит идентичность пользователя и токен провайдера
// аутентификации, который пересылается удалённым функциям. UID лежит в
// стандартном поле sub.
type CustomClaims struct {
	Email         string `json:"email,omitempty"`
	ProviderToken string `json:"pvt,omitempty"`
	jwt.RegisteredClaims
}

// Identity возвращает идентичность, закодированную в токене.
func (c *CustomClaims) Identity() models.UserIdentity {
	return models.UserIdentity{UID: c.Subject, Email: c.Email}
}

// GenerateToken создает токен для identity со сроком жизни tokenTTL.
func (j *MakerImpl) GenerateToken(identity models.UserIdentity, providerToken string) (string, error) {
	const op = "jwt.GenerateToken"
	if identity.UID == "" {
		return "", fmt.Errorf("%s: %w", op, ErrMissingSubject)
	}
	now := time.Now()
	claims := CustomClaims{
		Email:         identity.Email,
		ProviderToken: providerToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken проверяет подпись и срок действия токена.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingSubject)
	}
	return claims, nil
}

type providerClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IdentityFromProviderToken извлекает UID и email из ID-токена провайдера
// аутентификации. Подпись не проверяется: токен проверяют удалённые функции
// при каждом вызове.
func IdentityFromProviderToken(raw string) (models.UserIdentity, error) {
	const op = "jwt.IdentityFromProviderToken"
	var claims providerClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return models.UserIdentity{}, fmt.Errorf("%s: %w", op, err)
	}
	if claims.Subject == "" {
		return models.UserIdentity{}, fmt.Errorf("%s: %w", op, ErrMissingSubject)
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return models.UserIdentity{}, fmt.Errorf("%s: %w", op, jwt.ErrTokenExpired)
	}
	return models.UserIdentity{UID: claims.Subject, Email: claims.Email}, nil
}
