package domain

import "errors"

// Sentinel errors for the engine. Components wrap these with %w and callers
// classify with errors.Is; the transport layer maps them to status codes.
var (
	// ErrInvalidConfiguration reports malformed chunking parameters.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmptyTranscript reports an empty or whitespace-only transcript.
	ErrEmptyTranscript = errors.New("empty transcript")

	// ErrEmbeddingUnavailable reports a failure of the embedding capability.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrGenerationUnavailable reports a failure of the generative capability.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrEmptyIndex reports an attempt to build an index over zero vectors.
	ErrEmptyIndex = errors.New("empty index")

	// ErrSessionNotFound reports a query against an unknown session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTranscriptUnavailable reports a transcript acquisition failure.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")

	// ErrInvalidReference reports a locator no session id can be derived from.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrUpstreamTimeout marks a capability failure caused by the call
	// exceeding its deadline. It is always joined with the capability's own
	// sentinel, so errors.Is matches both.
	ErrUpstreamTimeout = errors.New("upstream timeout")
)
