package apperrors

import (
	"errors"
	"fmt"
)

// Turn-boundary error taxonomy. All of these are recoverable: the engine keeps
// serving subsequent turns, the middleware translates them to HTTP statuses.
var (
	// ErrScopeNotFound: conversation id supplied but it does not exist or does
	// not belong to the resolved user.
	ErrScopeNotFound = errors.New("conversation not found or access denied")

	// ErrInvalidForcedAgent: an explicitly forced agent tag is not one of the
	// known personas. Never silently substituted.
	ErrInvalidForcedAgent = errors.New("forced agent is not a known persona")

	// ErrConversationEnded: the conversation no longer accepts turns.
	ErrConversationEnded = errors.New("conversation has ended")

	// ErrExternalServiceUnavailable: embedding or generation call failed or
	// timed out. Handled locally with documented fallbacks, never returned raw
	// to the caller.
	ErrExternalServiceUnavailable = errors.New("external AI service unavailable")

	// ErrTurnInProgress: another writer holds the single-writer lease for the
	// conversation.
	ErrTurnInProgress = errors.New("another turn is already in progress for this conversation")

	// ErrInvalidMetadata: a metadata update would leave the conversation in an
	// inconsistent state, e.g. agent-locked without a locked agent.
	ErrInvalidMetadata = errors.New("invalid conversation metadata")
)

// AggregateWriteError marks a turn where the answer was generated but the
// conversation bookkeeping could not be committed. Operators need to tell this
// apart from a plain generation failure.
type AggregateWriteError struct {
	ConversationId string
	Cause          error
}

func (e *AggregateWriteError) Error() string {
	return fmt.Sprintf("conversation %s: aggregate write conflict: %v", e.ConversationId, e.Cause)
}

func (e *AggregateWriteError) Unwrap() error {
	return e.Cause
}

func NewAggregateWriteError(conversationId string, cause error) *AggregateWriteError {
	return &AggregateWriteError{ConversationId: conversationId, Cause: cause}
}

// IsAggregateWriteError reports whether err is (or wraps) an AggregateWriteError.
func IsAggregateWriteError(err error) bool {
	var target *AggregateWriteError
	return errors.As(err, &target)
}
