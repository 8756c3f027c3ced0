package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"toltimed/models"
)

// FinalizerState is the externally visible state of the last wizard step.
type FinalizerState string

const (
	StateUnset      FinalizerState = "unset"
	StateSelfForm   FinalizerState = "self"
	StateOtherForm  FinalizerState = "other"
	StateReady      FinalizerState = "ready"
	StateSubmitting FinalizerState = "submitting"
	StateSubmitted  FinalizerState = "submitted"
	StateFailed     FinalizerState = "failed"
)

// SubmitFunc performs the actual booking submission.
type SubmitFunc func(ctx context.Context) (*models.Booking, error)

// Finalizer captures whom the booking is for and guards the submission.
// The submitting flag is local to the finalizer and independent of any
// loading indicator the caller keeps.
type Finalizer struct {
	mu         sync.Mutex
	subject    models.BookingSubject
	phase      models.SubmissionPhase
	submitting bool
	lastErr    string
	bookingID  string
}

// NewFinalizer restores a finalizer. A persisted "submitting" phase is
// reopened for editing; callers that know the submission is still running
// mark it with markInFlight.
func NewFinalizer(subject models.BookingSubject, phase models.SubmissionPhase, lastErr, bookingID string) *Finalizer {
	if phase == "" || phase == models.PhaseSubmitting {
		phase = models.PhaseEditing
	}
	return &Finalizer{subject: subject.Clone(), phase: phase, lastErr: lastErr, bookingID: bookingID}
}

// markInFlight locks a restored finalizer whose submission runs in another
// request. Edits and submits are refused until that request saves its result.
func (f *Finalizer) markInFlight() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == models.PhaseSubmitted {
		return
	}
	f.submitting = true
	f.phase = models.PhaseSubmitting
}

func (f *Finalizer) editableLocked() error {
	switch {
	case f.submitting:
		return ErrLocked
	case f.phase == models.PhaseSubmitted:
		return ErrAlreadySubmitted
	}
	return nil
}

// ChooseSelf records that the account holder is the patient. Previously typed
// details for either branch are kept.
func (f *Finalizer) ChooseSelf() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editableLocked(); err != nil {
		return err
	}
	f.subject.Kind = models.SubjectSelf
	if f.subject.Self == nil {
		f.subject.Self = &models.SelfSubject{}
	}
	return nil
}

// ChooseOther records that the patient is someone else.
func (f *Finalizer) ChooseOther() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editableLocked(); err != nil {
		return err
	}
	f.subject.Kind = models.SubjectOther
	if f.subject.Other == nil {
		f.subject.Other = &models.OtherSubject{}
	}
	return nil
}

// UpdateSelf replaces the self-booking fields. The self branch must be chosen.
func (f *Finalizer) UpdateSelf(details models.SelfSubject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editableLocked(); err != nil {
		return err
	}
	if f.subject.Kind != models.SubjectSelf {
		return ErrWrongSubject
	}
	f.subject.Self = &details
	return nil
}

// AttachTestResult sets the optional attachment reference on a self booking.
func (f *Finalizer) AttachTestResult(ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editableLocked(); err != nil {
		return err
	}
	if f.subject.Kind != models.SubjectSelf || f.subject.Self == nil {
		return ErrWrongSubject
	}
	f.subject.Self.TestResult = ref
	return nil
}

// UpdateOther replaces the patient details. The other branch must be chosen.
func (f *Finalizer) UpdateOther(details models.OtherSubject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editableLocked(); err != nil {
		return err
	}
	if f.subject.Kind != models.SubjectOther {
		return ErrWrongSubject
	}
	f.subject.Other = &details
	return nil
}

// IsFormValid is false while the self/other choice is unset, whatever the fields hold.
func (f *Finalizer) IsFormValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subject.MissingFields()) == 0
}

// CanSubmit drives the enabled state of the submit control.
func (f *Finalizer) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subject.MissingFields()) == 0 && !f.submitting && f.phase != models.PhaseSubmitted
}

// State reports where the finalizer is in its lifecycle.
func (f *Finalizer) State() FinalizerState {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.submitting:
		return StateSubmitting
	case f.phase == models.PhaseSubmitted:
		return StateSubmitted
	case f.phase == models.PhaseFailed:
		return StateFailed
	case f.subject.Kind == models.SubjectUnset:
		return StateUnset
	case len(f.subject.MissingFields()) == 0:
		return StateReady
	case f.subject.Kind == models.SubjectSelf:
		return StateSelfForm
	}
	return StateOtherForm
}

// Subject returns a copy of the captured subject.
func (f *Finalizer) Subject() models.BookingSubject {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subject.Clone()
}

// Submit runs submit once. It refuses while the form is invalid, while another
// submission is outstanding, or after a successful one. The submitting flag is
// cleared only once submit has returned. timeout <= 0 means no deadline.
func (f *Finalizer) Submit(ctx context.Context, timeout time.Duration, submit SubmitFunc) (*models.Booking, error) {
	f.mu.Lock()
	if f.phase == models.PhaseSubmitted {
		f.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if missing := f.subject.MissingFields(); len(missing) > 0 {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrFormInvalid, models.NewValidationError(missingProblems(missing)...))
	}
	f.submitting = true
	f.phase = models.PhaseSubmitting
	f.mu.Unlock()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	booking, err := submit(ctx)
	if err == nil && booking == nil {
		err = errors.New("submission returned no booking")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.phase = models.PhaseFailed
		f.lastErr = err.Error()
		return nil, newSubmissionError(err)
	}
	f.phase = models.PhaseSubmitted
	f.lastErr = ""
	f.bookingID = booking.ID
	return booking, nil
}

func (f *Finalizer) snapshot() (models.BookingSubject, models.SubmissionPhase, string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subject.Clone(), f.phase, f.lastErr, f.bookingID
}

func missingProblems(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if field == "bookingForSelf" {
			out = append(out, "choose whether the booking is for you or someone else")
			continue
		}
		out = append(out, field+" is required")
	}
	return out
}
