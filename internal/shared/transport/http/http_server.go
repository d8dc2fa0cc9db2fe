package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/transport/http/middleware"
	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"github.com/gin-gonic/gin"
)

// Registrar is implemented by modules that mount routes on the API group.
type Registrar interface {
	HttpRegister(g *gin.RouterGroup)
}

type Options struct {
	CorsOrigins []string
	RateLimit   float64
	RateBurst   int
}

type Server struct {
	engine *gin.Engine
	group  *gin.RouterGroup
	srv    *nethttp.Server
}

func NewHttpServer(addr string, engine *gin.Engine, logger logx.Logger, opts Options) *Server {
	if engine == nil {
		engine = gin.New()
		engine.Use(gin.Recovery())
	}
	engine.Use(middleware.Cors(opts.CorsOrigins))
	engine.Use(middleware.AccessLog(logger))
	if opts.RateLimit > 0 {
		engine.Use(middleware.RateLimit(opts.RateLimit, opts.RateBurst))
	}
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		engine: engine,
		group:  engine.Group(""),
		srv: &nethttp.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start blocks; it returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) Group() *gin.RouterGroup {
	return s.group
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Handler() nethttp.Handler {
	return s.engine
}

func (s *Server) Register(r Registrar) {
	r.HttpRegister(s.group)
}
