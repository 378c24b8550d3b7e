package relay

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why an analysis did not produce predictions.
type Kind int

const (
	KindUnexpected Kind = iota
	KindMissingFile
	KindNoFileSelected
	KindMissingCredential
	KindRemoteService
)

func (k Kind) String() string {
	switch k {
	case KindMissingFile:
		return "MissingFile"
	case KindNoFileSelected:
		return "NoFileSelected"
	case KindMissingCredential:
		return "MissingCredential"
	case KindRemoteService:
		return "RemoteServiceError"
	default:
		return "UnexpectedFailure"
	}
}

// Error is the failure half of an analysis result. Status is the HTTP status
// the caller should see and Message the text placed in the error body.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrMissingFile       = &Error{Kind: KindMissingFile, Status: http.StatusBadRequest, Message: "No audio file uploaded"}
	ErrNoFileSelected    = &Error{Kind: KindNoFileSelected, Status: http.StatusBadRequest, Message: "No file selected"}
	ErrMissingCredential = &Error{Kind: KindMissingCredential, Status: http.StatusInternalServerError, Message: "HF_TOKEN not set"}
)

// Is matches on Kind so callers can write errors.Is(err, ErrNoFileSelected)
// regardless of which instance they hold.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// RemoteError builds a RemoteServiceError carrying the upstream status and body.
func RemoteError(status int, body []byte) *Error {
	return &Error{
		Kind:    KindRemoteService,
		Status:  status,
		Message: fmt.Sprintf("HF API Error: %s", body),
	}
}

// Unexpected wraps any other failure as a 500 carrying err's text.
func Unexpected(err error) *Error {
	return &Error{
		Kind:    KindUnexpected,
		Status:  http.StatusInternalServerError,
		Message: err.Error(),
		Err:     err,
	}
}

// AsError returns err as an *Error, wrapping foreign errors as Unexpected.
// It returns nil for a nil err.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Unexpected(err)
}
