// Package functions - HTTP-клиент серверных callable-функций: проверка
// подписки, оформление, отмена, автопродление и письмо-чек.
//
// Личность вызывающего передаётся токеном из контекста; если токена нет,
// используется сервисный ключ (например, у воркера отправки чеков).
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/credentials"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

// Имена удалённых функций.
const (
	FnValidateSubscription = "validateSubscription"
	FnCreateSubscription   = "createSubscription"
	FnCancelSubscription   = "cancelSubscription"
	FnToggleAutoRenew      = "toggleAutoRenew"
	FnSendReceiptEmail     = "sendReceiptEmail"
)

// Client вызывает серверные функции.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient создаёт клиент. timeout ограничивает каждый HTTP-запрос.
func NewClient(baseURL, serviceKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, name string, payload any) (*http.Request, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(envelope{Data: payload}); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if token, ok := credentials.Token(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if c.serviceKey != "" {
		req.Header.Set("X-Service-Key", c.serviceKey)
	}
	return req, nil
}

// call выполняет функцию и раскладывает result в out (если out не nil).
func (c *Client) call(ctx context.Context, name string, payload, out any, header http.Header) error {
	if _, ok := credentials.Token(ctx); !ok && c.serviceKey == "" {
		return &CallError{Function: name, Kind: ErrUnauthenticated, Message: "no credentials"}
	}

	req, err := c.newRequest(ctx, name, payload)
	if err != nil {
		return &CallError{Function: name, Kind: ErrInternal, Message: err.Error()}
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &CallError{Function: name, Kind: ErrUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &CallError{Function: name, Kind: ErrUnavailable, Message: err.Error()}
	}

	var r reply
	if len(body) > 0 {
		if err := json.Unmarshal(body, &r); err != nil && resp.StatusCode == http.StatusOK {
			return &CallError{Function: name, Kind: ErrInternal, Message: "malformed response"}
		}
	}

	if r.Error != nil {
		return &CallError{Function: name, Kind: kindOf(r.Error.Status), Status: r.Error.Status, Message: r.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return &CallError{Function: name, Kind: kindOfHTTP(resp.StatusCode), Message: "unexpected status: " + resp.Status}
	}

	if out == nil {
		return nil
	}
	if r.Result == nil {
		return &CallError{Function: name, Kind: ErrInternal, Message: "empty result"}
	}
	if err := json.Unmarshal(*r.Result, out); err != nil {
		return &CallError{Function: name, Kind: ErrInternal, Message: "malformed result"}
	}
	return nil
}

func kindOfHTTP(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthenticated
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusBadRequest:
		return ErrInvalidArgument
	case code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout || code == http.StatusBadGateway:
		return ErrUnavailable
	default:
		return ErrInternal
	}
}

// ValidateSubscription запрашивает серверную проверку подписки текущего пользователя.
func (c *Client) ValidateSubscription(ctx context.Context) (*ValidationResult, error) {
	var out ValidationResult
	if err := c.call(ctx, FnValidateSubscription, struct{}{}, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSubscription оформляет подписку. Каждый вызов получает свой
// Idempotency-Key, чтобы повтор на транспортном уровне не создал вторую подписку.
func (c *Client) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*CreateSubscriptionResponse, error) {
	header := http.Header{}
	header.Set("Idempotency-Key", uuid.NewString())

	var out CreateSubscriptionResponse
	if err := c.call(ctx, FnCreateSubscription, req, &out, header); err != nil {
		return nil, err
	}
	if out.SubscriptionID == "" {
		return nil, &CallError{Function: FnCreateSubscription, Kind: ErrInternal, Message: "missing subscriptionId"}
	}
	return &out, nil
}

// CancelSubscription отменяет подписку в конце оплаченного периода.
// Повторная отмена уже отменённой подписки ошибкой не считается.
func (c *Client) CancelSubscription(ctx context.Context) error {
	return c.call(ctx, FnCancelSubscription, struct{}{}, nil, nil)
}

// ToggleAutoRenew включает или выключает автопродление.
func (c *Client) ToggleAutoRenew(ctx context.Context, enabled bool) error {
	return c.call(ctx, FnToggleAutoRenew, toggleAutoRenewRequest{AutoRenew: enabled}, nil, nil)
}

// SendReceiptEmail отправляет письмо-чек.
func (c *Client) SendReceiptEmail(ctx context.Context, req models.ReceiptRequest) error {
	payload := struct {
		Email           string                 `json:"email"`
		PurchaseDetails models.PurchaseDetails `json:"purchaseDetails"`
	}{req.Email, req.PurchaseDetails}

	header := http.Header{}
	if req.MessageID != "" {
		header.Set("Idempotency-Key", req.MessageID)
	}
	return c.call(ctx, FnSendReceiptEmail, payload, nil, header)
}

// ParseTime разбирает ISO-8601 дату из ответов функций.
func ParseTime(value string) (time.Time, error) {
	const op = "functions.ParseTime"
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: %w", op, errors.New("unsupported time format: "+value))
}
