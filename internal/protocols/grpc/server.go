// Package grpc exposes the standard gRPC health service so orchestrators can
// probe the server alongside the HTTP /health route.
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service key reported for the API
const ServiceName = "missionhub.v1.MissionHub"

// Pinger checks a backing dependency, usually the database pool
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	server   *grpc.Server
	addr     string
	health   *health.Server
	pinger   Pinger
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewServer builds the server. pinger may be nil, in which case the service
// is always reported SERVING while running.
func NewServer(addr string, pinger Pinger) *Server {
	entry := logrus.NewEntry(logrus.StandardLogger())

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	server := grpc.NewServer(
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
			grpc_logging.UnaryServerInterceptor(entry),
			grpc_recovery.UnaryServerInterceptor(),
		)),
		grpc.StreamInterceptor(grpc_middleware.ChainStreamServer(
			grpc_logging.StreamServerInterceptor(entry),
			grpc_recovery.StreamServerInterceptor(),
		)),
	)
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	return &Server{
		server:   server,
		addr:     addr,
		health:   healthServer,
		pinger:   pinger,
		interval: 15 * time.Second,
		stop:     make(chan struct{}),
	}
}

// Start listens on addr and serves in the background
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(lis)
}

// Serve serves on an existing listener in the background
func (s *Server) Serve(lis net.Listener) error {
	go func() {
		logrus.Infof("gRPC health server listening on %s", lis.Addr())
		if err := s.server.Serve(lis); err != nil {
			logrus.Errorf("gRPC server stopped: %v", err)
		}
	}()
	if s.pinger != nil {
		go s.probe()
	}
	return nil
}

// probe flips the service status with the pinger result
func (s *Server) probe() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.Check()
		select {
		case <-ticker.C:
		case <-s.stop:
			return
		}
	}
}

// Check runs the pinger once and records the result
func (s *Server) Check() {
	if s.pinger == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(ctx); err != nil {
		logrus.Warnf("health probe failed: %v", err)
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}

// Stop marks every service NOT_SERVING and drains in-flight calls
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		logrus.Info("gRPC server stopping")
		close(s.stop)
		s.health.Shutdown()
		s.server.GracefulStop()
	})
}

// WaitForShutdown blocks until ctx is done or Stop is called
func (s *Server) WaitForShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		s.Stop()
	case <-s.stop:
	}
}
