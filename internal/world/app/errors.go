package app

import (
	"errors"

	"github.com/Chinaskijl/stttg/modules/kit/errx"
)

type Code = errx.Code

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeForbidden       Code = "FORBIDDEN"
	CodeInsufficient    Code = "INSUFFICIENT_RESOURCES"
	CodeLimitExceeded   Code = "LIMIT_EXCEEDED"
	CodePersistence     Code = "PERSISTENCE"
)

type Error = errx.Error

// Sentinels. Derive with WithData/WithReason/WithCause, never mutate.
var (
	ErrInvalidArgument = errx.NewBiz(CodeInvalidArgument, "invalid argument")
	ErrNotFound        = errx.NewBiz(CodeNotFound, "not found")
	ErrForbidden       = errx.NewBiz(CodeForbidden, "forbidden")
	ErrInsufficient    = errx.NewBiz(CodeInsufficient, "insufficient resources")
	ErrLimitExceeded   = errx.NewBiz(CodeLimitExceeded, "building limit exceeded")
	ErrPersistence     = errx.NewSys(CodePersistence, "game state persistence failed")

	ErrInternal    = errx.ErrInternal
	ErrUnavailable = errx.ErrUnavailable
	ErrTimeout     = errx.ErrTimeout
	ErrReqParamERR = errx.ErrReqParamERR
)

// Insufficient builds the required-vs-available failure.
func Insufficient(reason Reason, resource string, required, available float64) *Error {
	return ErrInsufficient.
		WithReason(reason).
		WithData("resource", resource).
		WithData("required", required).
		WithData("available", available)
}

func Invalid(reason Reason) *Error {
	return ErrInvalidArgument.WithReason(reason)
}

// GetErrorReasonCode returns data["reason"] of the first errx.Error in the chain.
func GetErrorReasonCode(err error) string {
	var e *errx.Error
	if errors.As(err, &e) {
		return e.Reason()
	}
	return ""
}
