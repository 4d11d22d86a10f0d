package session

import "errors"

var (
	// ErrValidation: required user input is missing or blank.
	ErrValidation = errors.New("missing required input")
	// ErrNoDocument: a question was asked with no document loaded.
	ErrNoDocument = errors.New("no document loaded")
	// ErrNoActiveSession: there is nothing to save.
	ErrNoActiveSession = errors.New("no active session")
	// ErrBusy: another operation is still in flight. Operations are
	// serialized, never queued.
	ErrBusy = errors.New("another operation is in progress")
	// ErrExtraction: the keyword extraction request failed.
	ErrExtraction = errors.New("keyword extraction failed")
	// ErrQnA: the question answering request failed.
	ErrQnA = errors.New("question answering failed")
)
