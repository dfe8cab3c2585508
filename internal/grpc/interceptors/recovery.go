package interceptors

import (
	"context"
	"fmt"
	"runtime/debug"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"wikijobs/internal/logging"
)

// PanicRecoveryHandler turns a recovered panic value into the returned error
type PanicRecoveryHandler func(p interface{}) error

// DefaultPanicRecoveryHandler hides the panic behind codes.Internal
func DefaultPanicRecoveryHandler() PanicRecoveryHandler {
	return func(p interface{}) error {
		return status.Errorf(codes.Internal, "internal server error: %v", p)
	}
}

func logPanic(method string, p interface{}) {
	logging.ForComponent("grpc").Error("gRPC handler panic recovered", map[string]interface{}{
		"method":      method,
		"panic":       fmt.Sprintf("%v", p),
		"stack_trace": string(debug.Stack()),
	})
}

// RecoveryInterceptor returns a gRPC unary interceptor that recovers from panics
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return RecoveryInterceptorWithHandler(DefaultPanicRecoveryHandler())
}

// RecoveryInterceptorWithHandler returns a gRPC unary interceptor with custom panic handler
func RecoveryInterceptorWithHandler(recoveryHandler PanicRecoveryHandler) grpc.UnaryServerInterceptor {
	if recoveryHandler == nil {
		recoveryHandler = DefaultPanicRecoveryHandler()
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(info.FullMethod, r)
				err = recoveryHandler(r)
				resp = nil
			}
		}()

		return handler(ctx, req)
	}
}

// StreamRecoveryInterceptor returns a gRPC streaming interceptor that recovers from panics
func StreamRecoveryInterceptor() grpc.StreamServerInterceptor {
	recoveryHandler := DefaultPanicRecoveryHandler()

	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(info.FullMethod, r)
				err = recoveryHandler(r)
			}
		}()

		return handler(srv, ss)
	}
}
