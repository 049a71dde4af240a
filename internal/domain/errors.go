package domain

import "errors"

// Kind labels a failure so adapters can map it onto their own status codes.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindPermissionDenied Kind = "permission_denied"
	KindInvalidState     Kind = "invalid_state"
	KindConflict         Kind = "conflict"
	KindValidation       Kind = "validation_failure"
	KindInternal         Kind = "internal"
)

// Error is a labeled business-rule failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target has the same kind. A target with a message must
// also match the message, so sentinels sharing a kind stay distinguishable.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// NewError creates a labeled error.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a labeled error around an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind carried by err, or KindInternal for unlabeled errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var (
	ErrMatchNotFound      = NewError(KindNotFound, "match not found")
	ErrNotCreator         = NewError(KindPermissionDenied, "only the match creator can do this")
	ErrNotYourTurn        = NewError(KindPermissionDenied, "not your turn")
	ErrNotParticipant     = NewError(KindPermissionDenied, "player is not in the match")
	ErrUnknownPlayer      = NewError(KindPermissionDenied, "player not found")
	ErrNotJoinable        = NewError(KindInvalidState, "match is no longer joinable")
	ErrNotInProgress      = NewError(KindInvalidState, "match is not in progress")
	ErrNotEnded           = NewError(KindInvalidState, "match has not ended")
	ErrMissingOpponent    = NewError(KindInvalidState, "one player is missing")
	ErrSelfJoin           = NewError(KindConflict, "player already in the match")
	ErrMatchFull          = NewError(KindConflict, "match is already full")
	ErrSettling           = NewError(KindConflict, "match is already being archived")
	ErrPlayerBusy         = NewError(KindConflict, "player can only have one active match")
	ErrInvalidStartScore  = NewError(KindValidation, "starting score must be 101, 301 or 501")
	ErrInvalidThrowCount  = NewError(KindValidation, "between one and three throws must be provided")
	ErrInvalidSegment     = NewError(KindValidation, "segment must be between 0 and 20, or 25")
	ErrInvalidMultiplier  = NewError(KindValidation, "multiplier must be 1, 2 or 3")
	ErrInvalidBullMult    = NewError(KindValidation, "when segment is 25, multiplier must be 1 or 2")
	ErrInvalidStateFilter = NewError(KindValidation, "state must be joinable, in_progress or ended")
)
