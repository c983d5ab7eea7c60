// Package server assembles the notes server: store, service, gRPC transport
// and the optional HTTP gateway, and runs them until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"bpp-notes/internal/api/gateway"
	grpcapi "bpp-notes/internal/api/grpc"
	"bpp-notes/internal/api/http/middleware"
	"bpp-notes/internal/config"
	"bpp-notes/internal/logger"
	"bpp-notes/internal/metrics"
	"bpp-notes/internal/repository"
	"bpp-notes/internal/repository/memory"
	"bpp-notes/internal/repository/postgres"
	notesService "bpp-notes/internal/service/notes"
)

// Server is the application with its gRPC server and optional HTTP gateway.
type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	repo    repository.NoteRepository
	metrics *metrics.Metrics

	GRPCServer *grpc.Server
}

// New wires the components: Repository → Service → Handler → gRPC server.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repo, err := openRepository(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	noteSvc, err := notesService.NewNoteService(cfg.Service.Name, repo, log)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	log.Info("initialized note service",
		slog.String("service", noteSvc.Name()),
		slog.String("driver", cfg.Database.Driver),
	)

	m := metrics.New()

	grpcServer := grpcapi.NewServer(grpcapi.NewHandler(noteSvc, m), log, grpcapi.ServerOptions{
		MaxConcurrentStreams: cfg.Server.MaxConcurrentStreams,
		RateLimitRPS:         cfg.Server.RateLimitRPS,
		RateLimitBurst:       cfg.Server.RateLimitBurst,
		Interceptors:         []grpc.UnaryServerInterceptor{m.UnaryServerInterceptor()},
	})

	return &Server{
		cfg:        cfg,
		log:        log,
		repo:       repo,
		metrics:    m,
		GRPCServer: grpcServer,
	}, nil
}

func openRepository(ctx context.Context, db *config.ConfigDatabase, log *slog.Logger) (repository.NoteRepository, error) {
	switch db.Driver {
	case config.DriverPostgres:
		repo, err := postgres.New(ctx, postgres.Options{
			ConnectionStr: db.ConnectionStr,
			Password:      db.PasswordStr,
			RetryAttempts: db.RetryAttempts,
			Logger:        log,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return repo, nil
	default:
		return memory.NewRepository(), nil
	}
}

// Run listens on the configured ports and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	grpcLis, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(s.cfg.Server.PortGRPC)))
	if err != nil {
		return fmt.Errorf("listen gRPC: %w", err)
	}

	var httpLis net.Listener
	if s.cfg.Gateway.Enabled {
		httpLis, err = net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(s.cfg.Server.PortHTTP)))
		if err != nil {
			_ = grpcLis.Close()
			return fmt.Errorf("listen HTTP: %w", err)
		}
	}

	return s.Serve(ctx, grpcLis, httpLis)
}

// Serve runs the gRPC server on grpcLis and, when httpLis is not nil, the
// gateway on httpLis. It returns after both have stopped and the store is
// closed.
func (s *Server) Serve(ctx context.Context, grpcLis, httpLis net.Listener) error {
	defer func() {
		if err := s.repo.Close(); err != nil {
			s.log.Warn("failed to close store", logger.Err(err))
		}
	}()

	var handler http.Handler
	if httpLis != nil {
		conn, err := grpc.NewClient(dialTarget(grpcLis.Addr()),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		)
		if err != nil {
			_ = grpcLis.Close()
			_ = httpLis.Close()
			return fmt.Errorf("gateway connection: %w", err)
		}
		defer conn.Close()

		handler, err = gateway.New(conn, s.log, gateway.Options{
			CORSAllowedOrigins: s.cfg.Gateway.CORSAllowedOrigins,
			CORSMaxAge:         s.cfg.Gateway.CORSMaxAge,
			RateLimitRPS:       s.cfg.Server.RateLimitRPS,
			RateLimitBurst:     s.cfg.Server.RateLimitBurst,
			Metrics:            s.metrics.Handler(),
			Observers:          []middleware.Observer{s.metrics.ObserveHTTP},
		})
		if err != nil {
			_ = grpcLis.Close()
			_ = httpLis.Close()
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("gRPC server listening", slog.String("addr", grpcLis.Addr().String()))
		if err := s.GRPCServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})

	if handler != nil {
		g.Go(func() error {
			return gateway.Serve(gctx, httpLis, handler, s.log, s.shutdownTimeout())
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		return nil
	})

	return g.Wait()
}

// shutdown stops the gRPC server gracefully, forcing it after the timeout.
func (s *Server) shutdown() {
	s.log.Info("starting graceful shutdown")

	timer := time.NewTimer(s.shutdownTimeout())
	defer timer.Stop()

	stopped := make(chan struct{})
	go func() {
		s.GRPCServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.log.Info("gRPC server stopped gracefully")
	case <-timer.C:
		s.log.Warn("graceful shutdown timeout, forcing stop")
		s.GRPCServer.Stop()
	}
}

func (s *Server) shutdownTimeout() time.Duration {
	return time.Duration(s.cfg.Server.GracefulShutdownTimeout) * time.Second
}

// dialTarget turns a listen address into one the gateway can dial.
func dialTarget(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return addr.String()
	}
	if tcp.IP == nil || tcp.IP.IsUnspecified() {
		return net.JoinHostPort("localhost", strconv.Itoa(tcp.Port))
	}
	return tcp.String()
}
