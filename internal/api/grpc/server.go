package grpc

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"bpp-notes/internal/api/grpc/interceptors"
	notesv1 "bpp-notes/pkg/api/notes/v1"
)

// ServerOptions tunes the gRPC server.
type ServerOptions struct {
	MaxConcurrentStreams uint32
	RateLimitRPS         int
	RateLimitBurst       int

	// Extra interceptors run after recovery, logging and rate limiting and
	// before request validation.
	Interceptors []grpc.UnaryServerInterceptor
}

// NewServer builds the gRPC server with keepalive limits and the interceptor
// chain, and registers the notes and health services.
func NewServer(handler notesv1.NotesServiceServer, log *slog.Logger, opts ServerOptions) *grpc.Server {
	if opts.MaxConcurrentStreams == 0 {
		opts.MaxConcurrentStreams = 25
	}

	// Order: recovery → logger → rate limit → extra → validate.
	chain := []grpc.UnaryServerInterceptor{
		interceptors.RecoveryUnaryInterceptor(log),
		interceptors.LoggerUnaryInterceptor(log),
		interceptors.RateLimitUnaryInterceptor(opts.RateLimitRPS, opts.RateLimitBurst),
	}
	chain = append(chain, opts.Interceptors...)
	chain = append(chain, interceptors.ValidateUnaryInterceptor)

	grpcServer := grpc.NewServer(
		grpc.MaxConcurrentStreams(opts.MaxConcurrentStreams),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     30 * time.Minute,
			MaxConnectionAge:      1 * time.Hour,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  10 * time.Minute,
			Timeout:               20 * time.Second,
		}),
		grpc.ChainUnaryInterceptor(chain...),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)

	notesv1.RegisterNotesServiceServer(grpcServer, handler)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(notesv1.NotesService_ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	log.Debug("registered gRPC services", slog.String("service", notesv1.NotesService_ServiceName))

	return grpcServer
}
