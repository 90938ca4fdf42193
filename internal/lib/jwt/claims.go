// Package jwt выпускает и проверяет токены сессии мобильного клиента.
package jwt

import (
	"time"

	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

// Maker описывает генерацию и разбор токенов сессии.
type Maker interface {
	GenerateToken(identity models.UserIdentity, providerToken string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl подписывает токены HS256 секретным ключом.
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
