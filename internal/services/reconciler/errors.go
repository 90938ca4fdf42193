package reconciler

import (
	"errors"
	"fmt"

	"github.com/magabrotheeeer/entitlement-gateway/internal/functions"
)

// Action - мутация подписки, имя которой показывается пользователю при ошибке.
type Action string

const (
	ActionCreate          Action = "create"
	ActionCancel          Action = "cancel"
	ActionToggleAutoRenew Action = "toggle-auto-renew"
)

// Kind - категория ошибки мутации.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindInvalidArgument Kind = "invalid-argument"
	KindNotFound        Kind = "not-found"
	KindUnavailable     Kind = "unavailable"
	KindInternal        Kind = "internal"
)

var defaultMessages = map[Kind]string{
	KindUnauthenticated: "sign in required",
	KindInvalidArgument: "invalid request",
	KindNotFound:        "no active subscription",
	KindUnavailable:     "subscription service is unavailable, try again later",
	KindInternal:        "subscription service failed",
}

// MutationError описывает неудачную мутацию.
type MutationError struct {
	Action  Action
	Kind    Kind
	Message string
	Err     error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s subscription: %s: %s", e.Action, e.Kind, e.Message)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

func newMutationError(action Action, kind Kind, message string, err error) *MutationError {
	if message == "" {
		message = defaultMessages[kind]
	}
	return &MutationError{Action: action, Kind: kind, Message: message, Err: err}
}

// fromCall переводит ошибку удалённой функции в MutationError. Сообщение
// invalid-argument передаётся пользователю дословно.
func fromCall(action Action, err error) *MutationError {
	var callErr *functions.CallError
	message := ""
	if errors.As(err, &callErr) {
		message = callErr.Message
	}

	switch {
	case errors.Is(err, functions.ErrUnauthenticated):
		return newMutationError(action, KindUnauthenticated, "", err)
	case errors.Is(err, functions.ErrInvalidArgument):
		return newMutationError(action, KindInvalidArgument, message, err)
	case errors.Is(err, functions.ErrNotFound):
		return newMutationError(action, KindNotFound, "", err)
	case errors.Is(err, functions.ErrUnavailable):
		return newMutationError(action, KindUnavailable, "", err)
	default:
		return newMutationError(action, KindInternal, "", err)
	}
}

// Result - структурированный итог мутации для клиента.
type Result struct {
	Success bool   `json:"success"`
	Action  Action `json:"action"`
	Error   string `json:"error,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
}

// ResultOf строит Result по ошибке мутации.
func ResultOf(action Action, err error) Result {
	if err == nil {
		return Result{Success: true, Action: action}
	}
	var mErr *MutationError
	if errors.As(err, &mErr) {
		return Result{Action: mErr.Action, Error: mErr.Message, Kind: mErr.Kind}
	}
	return Result{Action: action, Error: defaultMessages[KindInternal], Kind: KindInternal}
}
