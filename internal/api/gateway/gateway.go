// Package gateway exposes the notes service over HTTP/JSON.
//
// Routes are registered on a grpc-gateway runtime.ServeMux and forwarded to
// the gRPC server through a regular client connection, so HTTP callers go
// through the same interceptors as gRPC ones.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"bpp-notes/internal/api/http/middleware"
	"bpp-notes/internal/logger"
	notesv1 "bpp-notes/pkg/api/notes/v1"
)

// Options configures the gateway handler.
type Options struct {
	CORSAllowedOrigins string
	CORSMaxAge         int
	RateLimitRPS       int
	RateLimitBurst     int

	// Metrics is served on GET /metrics when set.
	Metrics http.Handler
	// Observers see every finished request.
	Observers []middleware.Observer
}

type route struct {
	method  string
	pattern string
	handler runtime.HandlerFunc
}

type gateway struct {
	mux    *runtime.ServeMux
	notes  notesv1.NotesServiceClient
	health healthpb.HealthClient
}

// New builds the gateway HTTP handler on top of a gRPC connection.
func New(conn grpc.ClientConnInterface, log *slog.Logger, opts Options) (http.Handler, error) {
	g := &gateway{
		mux: runtime.NewServeMux(
			runtime.WithMarshalerOption(runtime.MIMEWildcard, &runtime.JSONBuiltin{}),
		),
		notes:  notesv1.NewNotesServiceClient(conn),
		health: healthpb.NewHealthClient(conn),
	}

	routes := []route{
		{http.MethodPost, "/v1/notes", g.add},
		{http.MethodDelete, "/v1/notes/{id}", g.remove},
		{http.MethodGet, "/v1/notes", g.search},
		{http.MethodGet, "/healthz", g.healthz},
	}
	if opts.Metrics != nil {
		routes = append(routes, route{http.MethodGet, "/metrics", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			opts.Metrics.ServeHTTP(w, r)
		}})
	}

	for _, rt := range routes {
		if err := g.mux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return nil, fmt.Errorf("register %s %s: %w", rt.method, rt.pattern, err)
		}
	}

	// Outermost first: tracing, CORS, logging, rate limit.
	var handler http.Handler = g.mux
	handler = middleware.RateLimit(handler, log, opts.RateLimitRPS, opts.RateLimitBurst)
	handler = middleware.Logging(handler, log, opts.Observers...)
	handler = setupCORS(opts).Handler(handler)
	handler = otelhttp.NewHandler(handler, "bpp-gateway")

	return handler, nil
}

// Serve runs the handler on lis until ctx is done, then shuts down within
// shutdownTimeout.
func Serve(ctx context.Context, lis net.Listener, handler http.Handler, log *slog.Logger, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP gateway listening", slog.String("addr", lis.Addr().String()))
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("gateway: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("gateway shutdown timed out, closing", logger.Err(err))
		_ = srv.Close()
	}
	log.Info("HTTP gateway stopped")

	return nil
}

func (g *gateway) add(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	inbound, outbound := runtime.MarshalerForRequest(g.mux, r)

	var req notesv1.AddRequest
	if err := inbound.NewDecoder(r.Body).Decode(&req); err != nil {
		g.fail(w, r, outbound, status.Errorf(codes.InvalidArgument, "malformed body: %v", err))
		return
	}

	resp, err := g.notes.Add(r.Context(), &req)
	if err != nil {
		g.fail(w, r, outbound, err)
		return
	}

	g.write(w, outbound, http.StatusCreated, resp)
}

func (g *gateway) remove(w http.ResponseWriter, r *http.Request, params map[string]string) {
	_, outbound := runtime.MarshalerForRequest(g.mux, r)

	resp, err := g.notes.Remove(r.Context(), &notesv1.RemoveRequest{Id: params["id"]})
	if err != nil {
		g.fail(w, r, outbound, err)
		return
	}

	g.write(w, outbound, http.StatusOK, resp)
}

func (g *gateway) search(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	_, outbound := runtime.MarshalerForRequest(g.mux, r)

	q := r.URL.Query()
	req := &notesv1.SearchRequest{Query: q.Get("query")}
	if raw := q.Get("all"); raw != "" {
		all, err := strconv.ParseBool(raw)
		if err != nil {
			g.fail(w, r, outbound, status.Errorf(codes.InvalidArgument, "invalid all=%q", raw))
			return
		}
		req.All = all
	}

	resp, err := g.notes.Search(r.Context(), req)
	if err != nil {
		g.fail(w, r, outbound, err)
		return
	}

	g.write(w, outbound, http.StatusOK, resp)
}

func (g *gateway) healthz(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	_, outbound := runtime.MarshalerForRequest(g.mux, r)

	resp, err := g.health.Check(r.Context(), &healthpb.HealthCheckRequest{Service: notesv1.NotesService_ServiceName})
	if err != nil {
		g.fail(w, r, outbound, err)
		return
	}

	code := http.StatusOK
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		code = http.StatusServiceUnavailable
	}
	g.write(w, outbound, code, map[string]string{"status": resp.GetStatus().String()})
}

func (g *gateway) write(w http.ResponseWriter, m runtime.Marshaler, code int, v any) {
	b, err := m.Marshal(v)
	if err != nil {
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", m.ContentType(v))
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

func (g *gateway) fail(w http.ResponseWriter, r *http.Request, m runtime.Marshaler, err error) {
	runtime.HTTPError(r.Context(), g.mux, m, w, r, err)
}

// setupCORS builds the CORS middleware from a comma separated origin list.
func setupCORS(opts Options) *cors.Cors {
	origins := strings.Split(opts.CORSAllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	maxAge := opts.CORSMaxAge
	if maxAge == 0 {
		maxAge = 86400
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Requested-With"},
		MaxAge:         maxAge,
	})
}
