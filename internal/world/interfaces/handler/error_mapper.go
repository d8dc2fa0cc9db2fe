package handler

import (
	"context"
	"errors"

	"github.com/Chinaskijl/stttg/internal/shared/transport"
	"github.com/Chinaskijl/stttg/internal/world/actor"
	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/modules/kit/errx"
	"github.com/Chinaskijl/stttg/modules/kit/logx"
)

const systemBusyMsg = "server busy, please retry"

func mapBizCodeToClientCode(code errx.Code) int {
	switch code {
	case app.CodeInvalidArgument:
		return transport.InvalidParam
	case app.CodeNotFound:
		return transport.NotFound
	case app.CodeForbidden:
		return transport.Forbidden
	case app.CodeInsufficient:
		return transport.InsufficientResources
	case app.CodeLimitExceeded:
		return transport.LimitExceeded
	default:
		return transport.SystemError
	}
}

func mapTechErrToClientCode(err error) int {
	switch {
	case err == nil:
		return transport.OK
	case errors.Is(err, app.ErrReqParamERR):
		return transport.InvalidParam
	case errors.Is(err, errx.ErrRateLimited):
		return transport.RateLimited
	case errors.Is(err, app.ErrUnavailable), errors.Is(err, app.ErrTimeout):
		return transport.Unavailable
	}
	return actor.CodeFromError(err)
}

// HandleError turns err into the client code, message and public data of a
// failed response, and reports it. Only business rejections expose data.
func HandleError(ctx context.Context, log logx.Logger, action string, err error) (int, string, map[string]any) {
	if err == nil {
		return transport.OK, "", nil
	}
	reason := app.GetErrorReasonCode(err)
	if reason != "" {
		transport.SetErrorReason(ctx, reason)
	}

	var e *errx.Error
	if errors.As(err, &e) && e.IsBiz() {
		msg, ok := app.ReasonMessage(reason)
		if !ok {
			msg = e.Msg()
		}
		logx.ReportBiz(ctx, log, logx.NewBizLog(action, reason, msg))
		return mapBizCodeToClientCode(e.Code()), msg, e.Data()
	}

	code := mapTechErrToClientCode(err)
	if code == transport.InvalidParam {
		return code, "malformed request", nil
	}
	logx.ReportSysError(ctx, log, logx.NewSysLog(action, err))
	return code, systemBusyMsg, nil
}
