package grpc

import (
	"fmt"
	"net"

	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"go.uber.org/zap"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer exposes grpc.health.v1 for ops probes. The service name is
// what callers pass to SetServing.
type HealthServer struct {
	addr    string
	service string
	srv     *gogrpc.Server
	health  *health.Server
	log     logx.Logger
}

func NewHealthServer(addr, service string, l logx.Logger) *HealthServer {
	if l == nil {
		l = logx.Nop()
	}
	srv := gogrpc.NewServer(
		gogrpc.ChainUnaryInterceptor(UnaryServerTraceInterceptor()),
		gogrpc.ChainStreamInterceptor(StreamServerTraceInterceptor()),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{
		addr:    addr,
		service: service,
		srv:     srv,
		health:  hs,
		log:     l,
	}
}

func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(h.service, status)
	h.health.SetServingStatus("", status)
}

// Serve blocks until Stop.
func (h *HealthServer) Serve() error {
	lis, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("grpc listen %s: %w", h.addr, err)
	}
	h.log.Info("grpc health server listening", zap.String("addr", lis.Addr().String()))
	return h.ServeListener(lis)
}

func (h *HealthServer) ServeListener(lis net.Listener) error {
	return h.srv.Serve(lis)
}

func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.srv.GracefulStop()
}
