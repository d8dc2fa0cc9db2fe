package handler

import "github.com/Chinaskijl/stttg/internal/shared/transport"

// Response is the envelope of every HTTP reply.
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

func Success(data any) Response {
	return Response{Code: transport.OK, Msg: "ok", Data: data}
}

func Error(code int, msg string, data any) Response {
	return Response{Code: code, Msg: msg, Data: data}
}
