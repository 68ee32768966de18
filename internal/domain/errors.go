package domain

import "errors"

// ErrBusy is returned when a cycle is already in flight.
var ErrBusy = errors.New("update already in progress")

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AnalysisError reports a language-model transport or provider failure.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string { return "AI analysis failed" }

func (e *AnalysisError) Unwrap() error { return e.Err }

// PublishError reports a signing, broadcast or confirmation failure.
type PublishError struct {
	Err error
}

func (e *PublishError) Error() string { return "Failed to write to settlement chain" }

func (e *PublishError) Unwrap() error { return e.Err }
