// Package models содержит доменные структуры сервиса: личность пользователя,
// тарифы, запись о подписке и производный снимок прав доступа.
package models

// UserIdentity описывает аутентифицированного пользователя.
// Создаётся провайдером аутентификации и не меняется за время жизни аккаунта.
type UserIdentity struct {
	UID   string `json:"uid"`   // Стабильный непрозрачный идентификатор
	Email string `json:"email"` // Адрес для чеков и сопоставления клиента у платёжного провайдера
}
