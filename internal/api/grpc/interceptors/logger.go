package interceptors

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggerUnaryInterceptor logs the start of each call and its outcome with
// the status code and duration.
func LoggerUnaryInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		method := slog.String("method", info.FullMethod)
		log.DebugContext(ctx, "incoming request", method)

		start := time.Now()
		resp, err := handler(ctx, req)
		duration := slog.Duration("duration", time.Since(start))

		if err != nil {
			st := status.Convert(err)
			log.WarnContext(ctx, "request failed",
				method,
				slog.String("code", st.Code().String()),
				slog.String("message", st.Message()),
				duration,
			)
			return resp, err
		}

		log.InfoContext(ctx, "request completed", method, duration)

		return resp, nil
	}
}
