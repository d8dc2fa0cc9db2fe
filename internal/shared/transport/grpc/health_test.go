package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/Chinaskijl/stttg/modules/kit/logx"
	"github.com/Chinaskijl/stttg/modules/kit/tracex"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

func TestHealthServer_ServingFlip(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	hs := NewHealthServer(lis.Addr().String(), "world", logx.Nop())
	go func() { _ = hs.ServeListener(lis) }()
	defer hs.Stop()

	conn, err := gogrpc.NewClient(lis.Addr().String(),
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithChainUnaryInterceptor(UnaryClientTraceInterceptor()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "world"})
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		return resp.GetStatus()
	}

	if got := check(); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("initial status=%v", got)
	}
	hs.SetServing(true)
	if got := check(); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("status after flip=%v", got)
	}
}

func TestTraceMetadataRoundTrip(t *testing.T) {
	ctx := tracex.WithTraceID(context.Background(), "trace-1")
	ctx = tracex.WithSpanID(ctx, "span-1")

	out := injectTraceToOutgoing(ctx)
	md, ok := metadata.FromOutgoingContext(out)
	if !ok {
		t.Fatalf("no outgoing metadata")
	}

	in := extractTraceFromIncoming(metadata.NewIncomingContext(context.Background(), md))
	if id, _ := tracex.TraceIDFrom(in); id != "trace-1" {
		t.Fatalf("trace id=%q", id)
	}
	if id, _ := tracex.SpanIDFrom(in); id != "span-1" {
		t.Fatalf("span id=%q", id)
	}
}
