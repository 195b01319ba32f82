package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/logging"
	"github.com/dmitrijs2005/milestonegate/internal/server/auth"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
)

type ctxKey string

const actorKey ctxKey = "actor"

// RequestIDHeader is returned in the response header of every call.
const RequestIDHeader = "x-request-id"

func actorFromContext(ctx context.Context) (models.Actor, bool) {
	a, ok := ctx.Value(actorKey).(models.Actor)
	return a, ok
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	actor, err := auth.ActorFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	ctx = context.WithValue(ctx, actorKey, actor)

	return handler(ctx, req)
}

// observeInterceptor tags the call with a request id, records its duration
// and logs the outcome.
func (s *GRPCServer) observeInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	requestID := uuid.NewString()
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))
	ctx = logging.WithRequestID(ctx, requestID)

	start := time.Now()
	resp, err := handler(ctx, req)
	elapsed := time.Since(start)

	code := status.Code(err)
	if s.metrics != nil {
		s.metrics.ObserveGRPC(info.FullMethod, code.String(), elapsed)
	}

	args := []any{"method", info.FullMethod, "code", code.String(), "duration", elapsed}
	switch code {
	case codes.OK:
		s.logger.Info(ctx, "rpc finished", args...)
	case codes.Internal, codes.Unavailable:
		s.logger.Error(ctx, "rpc failed", append(args, "error", err)...)
	default:
		s.logger.Warn(ctx, "rpc refused", append(args, "error", err)...)
	}
	return resp, err
}
