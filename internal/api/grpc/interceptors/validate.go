package interceptors

import (
	"context"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	notesv1 "bpp-notes/pkg/api/notes/v1"
)

type validator interface {
	Validate() error
}

// ValidateUnaryInterceptor rejects requests whose Validate method fails
// with InvalidArgument before they reach the handler.
func ValidateUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if v, ok := req.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, validationError(info.FullMethod, err)
		}
	}

	return handler(ctx, req)
}

func validationError(method string, err error) error {
	msg := fmt.Sprintf("validation failed: %v", err)

	st, detailErr := status.New(codes.InvalidArgument, msg).WithDetails(&errdetails.ErrorInfo{
		Reason:   notesv1.ReasonValidation,
		Domain:   notesv1.ErrorDomain,
		Metadata: map[string]string{"method": method},
	})
	if detailErr != nil {
		return status.Error(codes.InvalidArgument, msg)
	}

	return st.Err()
}
