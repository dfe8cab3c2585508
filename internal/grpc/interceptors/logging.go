package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
	"wikijobs/pkg/utils"
)

// RequestIDHeader is the metadata key carrying a caller supplied request ID
const RequestIDHeader = "x-request-id"

// requestID returns the caller's request ID, or a fresh one
func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDHeader); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return utils.GenerateRequestID()
}

// statusCode maps a handler error onto its gRPC code
func statusCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return codes.Internal
}

// LoggingInterceptor returns a gRPC unary interceptor that logs requests and responses
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		startTime := time.Now()
		logger := logging.LogWithRequestID(requestID(ctx)).WithField(types.FieldComponent, "grpc")

		logger.Debug("gRPC request started", map[string]interface{}{
			"method": info.FullMethod,
		})

		resp, err := handler(ctx, req)

		logFields := map[string]interface{}{
			"method":          info.FullMethod,
			"processing_time": time.Since(startTime).String(),
			"status_code":     statusCode(err).String(),
		}

		if err != nil {
			logFields[types.FieldError] = err.Error()
			logger.Error("gRPC request failed", logFields)
		} else {
			logger.Debug("gRPC request completed", logFields)
		}

		return resp, err
	}
}

// StreamLoggingInterceptor returns a gRPC streaming interceptor that logs stream operations
func StreamLoggingInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		startTime := time.Now()
		logger := logging.LogWithRequestID(requestID(ss.Context())).WithField(types.FieldComponent, "grpc")

		logger.Debug("gRPC stream started", map[string]interface{}{
			"method": info.FullMethod,
		})

		err := handler(srv, ss)

		logFields := map[string]interface{}{
			"method":          info.FullMethod,
			"processing_time": time.Since(startTime).String(),
			"status_code":     statusCode(err).String(),
		}

		// Watch streams end with Canceled when the client goes away
		if err != nil && statusCode(err) != codes.Canceled {
			logFields[types.FieldError] = err.Error()
			logger.Error("gRPC stream failed", logFields)
		} else {
			logger.Debug("gRPC stream completed", logFields)
		}

		return err
	}
}
