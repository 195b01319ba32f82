package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/milestonegate/internal/common"
)

// MessageTryAgain is shown when storage or persistence failed and the
// milestone was left unchanged.
const MessageTryAgain = "try again"

// toStatus maps workflow errors onto gRPC codes. Order matters: a gate
// refusal is also an authorization error.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrPaymentNotApproved):
		return status.Error(codes.PermissionDenied, common.ErrPaymentNotApproved.Error())
	case errors.Is(err, common.ErrAuthorization):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, common.ErrRateLimited.Error())
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrConflict):
		return status.Error(codes.Aborted, common.ErrConflict.Error())
	case errors.Is(err, common.ErrPreviewSuperseded):
		return status.Error(codes.FailedPrecondition, common.ErrPreviewSuperseded.Error())
	case errors.Is(err, common.ErrPreviewUnavailable):
		return status.Error(codes.FailedPrecondition, common.ErrPreviewUnavailable.Error())
	case errors.Is(err, common.ErrStorage), errors.Is(err, common.ErrPersistence):
		return status.Error(codes.Unavailable, MessageTryAgain)
	}
	return status.Error(codes.Internal, "internal error")
}
