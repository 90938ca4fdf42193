package functions

import (
	"errors"
	"fmt"
	"strings"
)

// Категории ошибок удалённых функций.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrInternal        = errors.New("internal")
	// ErrUnavailable - сеть, таймаут или ответ без распознаваемого тела.
	ErrUnavailable = errors.New("unavailable")
)

// CallError - ошибка конкретного вызова с сообщением сервера.
type CallError struct {
	Function string
	Kind     error
	Status   string
	Message  string
}

func (e *CallError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("functions.%s: %v", e.Function, e.Kind)
	}
	return fmt.Sprintf("functions.%s: %v: %s", e.Function, e.Kind, e.Message)
}

func (e *CallError) Unwrap() error {
	return e.Kind
}

// Transient сообщает, что ошибку можно обойти повтором или чтением из кэша.
func Transient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrInternal)
}

// kindOf переводит статус callable-протокола в категорию.
// Принимаются оба написания: INVALID_ARGUMENT и invalid-argument.
func kindOf(status string) error {
	switch strings.ReplaceAll(strings.ToLower(status), "_", "-") {
	case "unauthenticated", "permission-denied":
		return ErrUnauthenticated
	case "invalid-argument", "failed-precondition", "out-of-range":
		return ErrInvalidArgument
	case "not-found":
		return ErrNotFound
	case "unavailable", "deadline-exceeded":
		return ErrUnavailable
	default:
		return ErrInternal
	}
}
