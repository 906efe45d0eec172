// Package apperr defines the structured error taxonomy shared by the photo
// and profile services. Every error carries a machine-checkable kind plus a
// human-readable message so the handler layer can pick a status code and
// render a specific message without string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that branch on it.
type Kind string

const (
	KindUnsupportedMediaType  Kind = "unsupported_media_type"
	KindPayloadTooLarge       Kind = "payload_too_large"
	KindInvalidMetadata       Kind = "invalid_metadata"
	KindUploadFailed          Kind = "upload_failed"
	KindMetadataPersistFailed Kind = "metadata_persist_failed"
	KindStorageConflict       Kind = "storage_conflict"
	KindProfileLookupFailed   Kind = "profile_lookup_failed"
	KindProfileCreateFailed   Kind = "profile_create_failed"
	KindNoSuchProfile         Kind = "no_such_profile"
	KindNotOwner              Kind = "not_owner"
)

// Error is a kinded error with an optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// Compensated is meaningful only for KindMetadataPersistFailed: it
	// reports whether the orphaned blob written before the failed insert
	// was successfully removed.
	Compensated bool
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the Kind of err, or the empty Kind when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
