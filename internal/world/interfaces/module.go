package interfaces

import (
	"context"

	transporthttp "github.com/Chinaskijl/stttg/internal/shared/transport/http"
	"github.com/Chinaskijl/stttg/internal/shared/transport/ws"
	"github.com/Chinaskijl/stttg/internal/world/interfaces/handler"
	"github.com/Chinaskijl/stttg/internal/world/interfaces/handler/http"
	ws2 "github.com/Chinaskijl/stttg/internal/world/interfaces/handler/ws"
	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"github.com/gin-gonic/gin"
)

type Module struct {
	wsHandler   *ws2.WsHandler
	httpHandler *http.HttpHandler
}

func New(w handler.World, l logx.Logger) *Module {
	return &Module{
		wsHandler:   ws2.NewWsHandler(w, l),
		httpHandler: http.NewHttpHandler(w, l),
	}
}

func (m *Module) WsRegister(r *ws.Router) {
	m.wsHandler.RegisterRoutes(r)
}

func (m *Module) HttpRegister(g *gin.RouterGroup) {
	m.httpHandler.RegisterRoutes(g)
}

// OnConnect is the ws.ConnectHook that greets new viewers.
func (m *Module) OnConnect(ctx context.Context, conn ws.WSConn) {
	m.wsHandler.OnConnect(ctx, conn)
}

var _ ws.Registrar = (*Module)(nil)
var _ transporthttp.Registrar = (*Module)(nil)
