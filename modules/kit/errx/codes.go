package errx

// Cross-service system codes. Domain codes (NOT_FOUND, INSUFFICIENT_RESOURCES, ...)
// belong to the bounded context that raises them, never to this package.
const (
	// CodeInternal is the catch-all for unexpected failures.
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable marks a dependency (storage, actor runtime) that cannot be reached.
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeTimeout     Code = "TIMEOUT"
	CodeRateLimited Code = "RATE_LIMITED"
	CodeMaintenance Code = "MAINTENANCE"
	// CodeReqParamError is returned when a request cannot be decoded at all.
	CodeReqParamError Code = "CODE_REQ_PARAM_ERROR"
)

// Shared sentinels. Derive with WithData/WithCause, never mutate.
var (
	ErrInternal    = NewSys(CodeInternal, "internal server error")
	ErrUnavailable = NewSys(CodeUnavailable, "service unavailable")
	ErrTimeout     = NewSys(CodeTimeout, "request timed out")
	ErrRateLimited = NewSys(CodeRateLimited, "too many requests")
	ErrMaintenance = NewSys(CodeMaintenance, "server under maintenance")
	ErrReqParamERR = NewSys(CodeReqParamError, "malformed request")
)
