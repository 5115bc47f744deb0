package client

import (
	"errors"
)

// Kind names the stage of a generation that failed.
type Kind string

const (
	KindMissingCredential Kind = "MissingCredential"
	KindSubmissionFailed  Kind = "SubmissionFailed"
	KindPollFailed        Kind = "PollFailed"
	KindNoResultLocator   Kind = "NoResultLocator"
	KindDownloadFailed    Kind = "DownloadFailed"
	KindCancelled         Kind = "Cancelled"
)

// Error is the single terminal error returned by Client.Generate.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status of a failed download, if any.
	Status string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so the sentinels
// below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrMissingCredential = &Error{Kind: KindMissingCredential, Message: "api key is required, please enter your Gemini API key"}
	ErrSubmissionFailed  = &Error{Kind: KindSubmissionFailed, Message: "failed to start video generation"}
	ErrPollFailed        = &Error{Kind: KindPollFailed, Message: "failed to get operation status during polling"}
	ErrNoResultLocator   = &Error{Kind: KindNoResultLocator, Message: "video generation succeeded, but no download link was found"}
	ErrDownloadFailed    = &Error{Kind: KindDownloadFailed, Message: "failed to download the video"}
	ErrCancelled         = &Error{Kind: KindCancelled, Message: "video generation cancelled"}
)

// KindOf returns the failure kind carried by err, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}
