// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков.
package response

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator"
)

// Response описывает стандартную структуру JSON-ответа сервера.
// Поле Status - статус запроса ("OK" или "Error").
// Поле Error - текст ошибки (опционально, при неуспехе).
// Поле Data - данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse - структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK - значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError - значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "alphanum":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers and letters", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// GateReader - чтения Access Gate, нужные для ответа.
type GateReader interface {
	IsPremium() bool
	CurrentPlan() (string, bool)
	ExpiresAt() (time.Time, bool)
	Features() []string
}

// Entitlement - права доступа пользователя в ответе API.
type Entitlement struct {
	IsPremium   bool       `json:"is_premium" example:"true"`
	CurrentPlan string     `json:"current_plan,omitempty" example:"monthly_premium"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Features    []string   `json:"features,omitempty"`
}

// EntitlementFrom собирает Entitlement из чтений Gate.
func EntitlementFrom(g GateReader) Entitlement {
	out := Entitlement{IsPremium: g.IsPremium(), Features: g.Features()}
	if plan, ok := g.CurrentPlan(); ok {
		out.CurrentPlan = plan
	}
	if exp, ok := g.ExpiresAt(); ok {
		out.ExpiresAt = &exp
	}
	return out
}
