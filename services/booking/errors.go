package booking

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound      = errors.New("booking session not found or expired")
	ErrWrongStage           = errors.New("action not available at the current wizard stage")
	ErrFirstStage           = errors.New("already at the first stage")
	ErrLastStage            = errors.New("already at the final stage")
	ErrFormInvalid          = errors.New("booking form is incomplete")
	ErrSubmissionInFlight   = errors.New("a submission is already in progress")
	ErrAlreadySubmitted     = errors.New("booking has already been submitted")
	ErrLocked               = errors.New("booking is being submitted and cannot be edited")
	ErrWrongSubject         = errors.New("details do not match the chosen booking subject")
	ErrUnknownPractitioner  = errors.New("practitioner is not in the session list")
	ErrUnknownService       = errors.New("service is not in the session catalog")
	ErrPractitionerRequired = errors.New("no practitioner selected")
)

// SubmissionError wraps a failure reported by the submission endpoint.
// The wizard keeps every entered value so the user can retry.
type SubmissionError struct {
	Code string
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func newSubmissionError(err error) error {
	code := "submissionFailed"
	if errors.Is(err, context.DeadlineExceeded) {
		code = "submissionTimeout"
	}
	return &SubmissionError{Code: code, Err: err}
}
