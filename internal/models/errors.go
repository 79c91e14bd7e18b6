package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity is not found in a store.
var ErrNotFound = errors.New("entity not found")

// ErrCacheUnavailable signals a transient cache failure; callers may retry.
var ErrCacheUnavailable = errors.New("cache unavailable")

// ErrorKind classifies user-facing failures. The HTTP layer maps each kind
// to a status code; services never inspect status codes directly.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindCensorship
	KindTextGenUnavailable
	KindCacheUnavailable
	KindPayload
)

// Error is the taxonomy error carried across service boundaries.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewValidation reports a bad payload or invariant violation.
func NewValidation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NewNotFound reports a missing entity.
func NewNotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// NewConflict reports a unique-constraint breach on an upsert race.
func NewConflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// NewCensorship reports a moderation rejection carrying the offending word.
func NewCensorship(word string) *Error {
	return &Error{Kind: KindCensorship, Msg: fmt.Sprintf("text rejected by moderation: %q", word)}
}

// NewTextGenUnavailable reports a downstream text-generation failure.
func NewTextGenUnavailable(err error) *Error {
	return &Error{Kind: KindTextGenUnavailable, Msg: "text generation unavailable", Err: err}
}

// NewCacheUnavailable reports a transient cache error. Retry-safe.
func NewCacheUnavailable(err error) *Error {
	return &Error{Kind: KindCacheUnavailable, Msg: "cache unavailable", Err: err}
}

// NewPayload reports a rejected upload.
func NewPayload(format string, args ...any) *Error {
	return &Error{Kind: KindPayload, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the taxonomy kind from err, defaulting to KindUnknown.
// Bare ErrNotFound / ErrCacheUnavailable sentinels map to their kinds so
// repository errors do not need re-wrapping at every call site.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	if errors.Is(err, ErrCacheUnavailable) {
		return KindCacheUnavailable
	}
	return KindUnknown
}
