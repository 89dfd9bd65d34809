package interview

import "errors"

// Fail-fast error states surfaced to callers. Everything else degrades
// gracefully inside the interview flow.
var (
	// ErrSessionNotFound is returned when a session id does not resolve.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSessionState is returned when an operation is attempted in a
	// phase that does not allow it, or while the previous turn is still being
	// processed.
	ErrInvalidSessionState = errors.New("invalid session state")

	// ErrEmptySession is returned when evaluation is requested for a session
	// with no finalized turns.
	ErrEmptySession = errors.New("session has no answered turns")

	// ErrResearchUnavailable is returned when neither a preset brief nor live
	// research can be obtained for the requested company/role pair.
	ErrResearchUnavailable = errors.New("research unavailable")
)
