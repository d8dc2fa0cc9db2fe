package transport

import "net/http"

// BizCode is the typed client code carried through the access-log context.
type BizCode int

// Client codes. Non-zero values mirror the HTTP status they are served with.
const (
	OK                    = 0
	InvalidParam          = 400
	Forbidden             = 403
	NotFound              = 404
	InsufficientResources = 409
	LimitExceeded         = 422
	RateLimited           = 429
	SystemError           = 500
	Unavailable           = 503
)

// HTTPStatus maps a client code to the status line used for it.
func HTTPStatus(code int) int {
	switch {
	case code == OK:
		return http.StatusOK
	case code >= 400 && code < 600:
		return code
	default:
		return http.StatusInternalServerError
	}
}
