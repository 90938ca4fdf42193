package models

import "time"

// SubscriptionStatus - состояние подписки в системе учёта.
type SubscriptionStatus string

const (
	// StatusActive - подписка оплачена и продлевается.
	StatusActive SubscriptionStatus = "active"
	// StatusCanceled - продление отключено, доступ сохраняется до EndDate.
	StatusCanceled SubscriptionStatus = "canceled"
	// StatusExpired - оплаченный период закончился.
	StatusExpired SubscriptionStatus = "expired"
)

// Valid проверяет, что статус входит в известный набор.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCanceled, StatusExpired:
		return true
	}
	return false
}

// PaymentMethodSummary хранит только тип и последние 4 цифры, без данных карты.
type PaymentMethodSummary struct {
	Type  string `json:"type"`
	Last4 string `json:"last4,omitempty"`
}

// SubscriptionRecord - авторитетное состояние подписки одного пользователя.
// На пользователя приходится не более одной записи; записи не удаляются,
// меняется только статус.
type SubscriptionRecord struct {
	PlanID                 string               `json:"plan_id"`
	Status                 SubscriptionStatus   `json:"status"`
	StartDate              time.Time            `json:"start_date"`
	EndDate                time.Time            `json:"end_date"`
	AutoRenew              bool                 `json:"auto_renew"`
	ExternalSubscriptionID string               `json:"external_subscription_id,omitempty"`
	ExternalCustomerID     string               `json:"external_customer_id,omitempty"`
	PaymentMethod          PaymentMethodSummary `json:"payment_method"`
	LastTransactionID      string               `json:"last_transaction_id,omitempty"`
}

// IsStale сообщает, что запись помечена active, но срок уже истёк.
func (r SubscriptionRecord) IsStale(now time.Time) bool {
	return r.Status == StatusActive && r.EndDate.Before(now)
}

// EffectiveStatus возвращает статус с поправкой на истёкший срок:
// устаревшая active-запись читается как expired.
func (r SubscriptionRecord) EffectiveStatus(now time.Time) SubscriptionStatus {
	if r.IsStale(now) {
		return StatusExpired
	}
	return r.Status
}

// Entitled вычисляет право на премиум-доступ. Учитываются оба сигнала:
// статус (active или canceled) и дата окончания не раньше now.
func (r SubscriptionRecord) Entitled(now time.Time) bool {
	if r.EndDate.IsZero() {
		return false
	}
	switch r.Status {
	case StatusActive, StatusCanceled:
		return !r.EndDate.Before(now)
	}
	return false
}
