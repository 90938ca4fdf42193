package functions

import "encoding/json"

// ValidationResult - ответ validateSubscription.
type ValidationResult struct {
	Active    bool   `json:"active"`
	Plan      string `json:"plan,omitempty"`
	EndDate   string `json:"endDate,omitempty"` // ISO-8601
	AutoRenew *bool  `json:"autoRenew,omitempty"`
	Status    string `json:"status,omitempty"`
}

// CreateSubscriptionRequest - запрос createSubscription.
type CreateSubscriptionRequest struct {
	PlanID          string `json:"planId"`
	PaymentMethodID string `json:"paymentMethodId"`
	CustomerEmail   string `json:"customerEmail"`
}

// CreateSubscriptionResponse - ответ createSubscription.
type CreateSubscriptionResponse struct {
	SubscriptionID string `json:"subscriptionId"`
	ClientSecret   string `json:"clientSecret,omitempty"`
	CustomerID     string `json:"customerId"`
}

type toggleAutoRenewRequest struct {
	AutoRenew bool `json:"autoRenew"`
}

type envelope struct {
	Data any `json:"data"`
}

type callError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type reply struct {
	Result *json.RawMessage `json:"result"`
	Error  *callError       `json:"error"`
}
