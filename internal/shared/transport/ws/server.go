package ws

import (
	"context"
	"net/http"

	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ConnectHook runs once per accepted viewer, after it joins the hub.
type ConnectHook func(ctx context.Context, conn WSConn)

type Server struct {
	ctx       context.Context
	router    *Router
	hub       *Hub
	onConnect ConnectHook
	upgrader  websocket.Upgrader
	log       logx.Logger
}

func NewServer(ctx context.Context, r *Router, hub *Hub, l logx.Logger) *Server {
	if l == nil {
		l = logx.Nop()
	}
	return &Server{
		ctx:    ctx,
		router: r,
		hub:    hub,
		log:    l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (s *Server) OnConnect(h ConnectHook) {
	s.onConnect = h
}

func (s *Server) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	wsConn, err := s.upgrader.Upgrade(resp, req, nil)
	if err != nil {
		s.log.Error("websocket upgrade error", zap.Error(err))
		return
	}

	conn := NewWsServer(wsConn, s.log)
	conn.Router(s.router)
	conn.Run()
	s.log.Info("websocket viewer connected", zap.String("conn", conn.ID()), zap.String("addr", conn.Addr()))

	if s.hub != nil {
		s.hub.Register(s.ctx, conn)
	}
	if s.onConnect != nil {
		s.onConnect(req.Context(), conn)
	}
}
