package nakama

import (
	"darts/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/grpc/codes"
)

var (
	errUnauthenticated = runtime.NewError("user id missing from context", int(codes.Unauthenticated))
	errInvalidPayload  = runtime.NewError("invalid payload", int(codes.InvalidArgument))
	errMissingMatchID  = runtime.NewError("match_id is required", int(codes.InvalidArgument))
	errVoiceDisabled   = runtime.NewError("voice chat is not configured", int(codes.FailedPrecondition))
	errInternal        = runtime.NewError("internal error", int(codes.Internal))
)

// codeFor maps a domain error kind onto the gRPC status Nakama returns.
func codeFor(kind domain.Kind) codes.Code {
	switch kind {
	case domain.KindNotFound:
		return codes.NotFound
	case domain.KindPermissionDenied:
		return codes.PermissionDenied
	case domain.KindInvalidState:
		return codes.FailedPrecondition
	case domain.KindConflict:
		return codes.AlreadyExists
	case domain.KindValidation:
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

// toRuntimeError converts a service error for the client. Internal failures
// are logged and replaced with a generic message.
func toRuntimeError(logger runtime.Logger, rpc string, err error) error {
	code := codeFor(domain.KindOf(err))
	if code == codes.Internal {
		logger.WithField("rpc", rpc).Error("internal error: %v", err)
		return errInternal
	}
	return runtime.NewError(err.Error(), int(code))
}
