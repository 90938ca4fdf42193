package response

import (
	"net/http"

	"github.com/magabrotheeeer/entitlement-gateway/internal/services/reconciler"
)

// MutationHTTPStatus выбирает HTTP-статус по категории ошибки мутации.
func MutationHTTPStatus(kind reconciler.Kind) int {
	switch kind {
	case reconciler.KindUnauthenticated:
		return http.StatusUnauthorized
	case reconciler.KindInvalidArgument:
		return http.StatusBadRequest
	case reconciler.KindNotFound:
		return http.StatusNotFound
	case reconciler.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// MutationFailed формирует ответ с ошибкой мутации. В Data лежит
// структурированный результат {success, action, error, kind}.
func MutationFailed(res reconciler.Result) Response {
	return Response{
		Status: StatusError,
		Error:  res.Error,
		Data:   res,
	}
}

// MutationData - данные успешного ответа мутации.
type MutationData struct {
	Result      reconciler.Result `json:"result"`
	Entitlement Entitlement       `json:"entitlement"`
}
