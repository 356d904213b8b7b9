// Package health serves the standard gRPC health checking protocol. The
// serving status follows a periodic database ping.
package health

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/classroom/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service reported alongside the overall "" status.
const ServiceName = "classroom.Portal"

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	address  string
	pinger   Pinger
	interval time.Duration
	logger   logging.Logger
	health   *health.Server
}

func NewServer(address string, pinger Pinger, interval time.Duration, l logging.Logger) *Server {
	return &Server{
		address:  address,
		pinger:   pinger,
		interval: interval,
		logger:   l.With("module", "health_server"),
		health:   health.NewServer(),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.probe(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting health server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}

func (s *Server) watch(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.probe(ctx)
		}
	}
}

// probe pings the database and publishes the resulting status.
func (s *Server) probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.pinger != nil {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := s.pinger.PingContext(pctx)
		cancel()
		if err != nil {
			s.logger.Warn(ctx, "database ping failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *Server) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "grpc request", "method", info.FullMethod, "duration", time.Since(start), "error", err)
	return resp, err
}
