package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toltimed/models"
)

func completeOther() models.OtherSubject {
	return models.OtherSubject{
		FirstName:    "Wanjiru",
		LastName:     "Kamau",
		Email:        "wanjiru@example.com",
		Phone:        "+254700000000",
		Address:      "Kilimani, Nairobi",
		Relationship: "Mother",
	}
}

func TestFormValidityFollowsSubject(t *testing.T) {
	f := NewFinalizer(models.BookingSubject{}, "", "", "")
	assert.Equal(t, StateUnset, f.State())
	assert.False(t, f.IsFormValid())
	assert.False(t, f.CanSubmit())

	require.NoError(t, f.ChooseSelf())
	assert.Equal(t, StateSelfForm, f.State())
	require.NoError(t, f.UpdateSelf(models.SelfSubject{Address: "   "}))
	assert.False(t, f.IsFormValid())
	require.NoError(t, f.UpdateSelf(models.SelfSubject{Address: "Westlands"}))
	assert.True(t, f.IsFormValid())
	assert.Equal(t, StateReady, f.State())

	require.NoError(t, f.ChooseOther())
	assert.False(t, f.IsFormValid())
	other := completeOther()
	other.Relationship = " "
	require.NoError(t, f.UpdateOther(other))
	assert.False(t, f.IsFormValid())
	require.NoError(t, f.UpdateOther(completeOther()))
	assert.True(t, f.CanSubmit())

	// Switching back keeps what was typed on the self branch.
	require.NoError(t, f.ChooseSelf())
	assert.Equal(t, "Westlands", f.Subject().Self.Address)
}

func TestUpdateRequiresMatchingBranch(t *testing.T) {
	f := NewFinalizer(models.BookingSubject{}, "", "", "")
	require.ErrorIs(t, f.UpdateSelf(models.SelfSubject{Address: "x"}), ErrWrongSubject)
	require.ErrorIs(t, f.AttachTestResult("ref"), ErrWrongSubject)
	require.NoError(t, f.ChooseOther())
	require.ErrorIs(t, f.UpdateSelf(models.SelfSubject{Address: "x"}), ErrWrongSubject)
}

func TestSubmitRejectsInvalidForm(t *testing.T) {
	f := NewFinalizer(models.BookingSubject{}, "", "", "")
	called := false
	_, err := f.Submit(context.Background(), time.Second, func(context.Context) (*models.Booking, error) {
		called = true
		return &models.Booking{ID: "x"}, nil
	})
	require.ErrorIs(t, err, ErrFormInvalid)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.False(t, called)
}

func TestSubmitIsNotReentrant(t *testing.T) {
	f := NewFinalizer(models.BookingSubject{Kind: models.SubjectSelf, Self: &models.SelfSubject{Address: "Westlands"}}, "", "", "")
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background(), 0, func(context.Context) (*models.Booking, error) {
			calls++
			close(started)
			<-release
			return &models.Booking{ID: "bk-1"}, nil
		})
		done <- err
	}()
	<-started

	assert.Equal(t, StateSubmitting, f.State())
	assert.False(t, f.CanSubmit())
	_, err := f.Submit(context.Background(), 0, func(context.Context) (*models.Booking, error) {
		t.Fatal("second submission must not reach the endpoint")
		return nil, nil
	})
	require.ErrorIs(t, err, ErrSubmissionInFlight)
	require.ErrorIs(t, f.UpdateSelf(models.SelfSubject{Address: "elsewhere"}), ErrLocked)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateSubmitted, f.State())

	_, err = f.Submit(context.Background(), 0, nil)
	require.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmitFailureKeepsData(t *testing.T) {
	f := NewFinalizer(models.BookingSubject{Kind: models.SubjectOther, Other: func() *models.OtherSubject { o := completeOther(); return &o }()}, "", "", "")

	_, err := f.Submit(context.Background(), time.Second, func(context.Context) (*models.Booking, error) {
		return nil, errUpstream
	})
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "submissionFailed", subErr.Code)
	assert.True(t, errors.Is(err, errUpstream))

	assert.Equal(t, StateFailed, f.State())
	assert.Equal(t, completeOther(), *f.Subject().Other)
	assert.True(t, f.CanSubmit())

	booking, err := f.Submit(context.Background(), time.Second, func(context.Context) (*models.Booking, error) {
		return &models.Booking{ID: "bk-2"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "bk-2", booking.ID)
}

func TestSubmitTimesOut(t *testing.T) {
	f := NewFinalizer(models.BookingSubject{Kind: models.SubjectSelf, Self: &models.SelfSubject{Address: "Westlands"}}, "", "", "")
	_, err := f.Submit(context.Background(), 10*time.Millisecond, func(ctx context.Context) (*models.Booking, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "submissionTimeout", subErr.Code)
	assert.Equal(t, StateFailed, f.State())
}

func TestSubmitTreatsMissingBookingAsFailure(t *testing.T) {
	f := NewFinalizer(models.BookingSubject{Kind: models.SubjectSelf, Self: &models.SelfSubject{Address: "Westlands"}}, "", "", "")
	_, err := f.Submit(context.Background(), 0, func(context.Context) (*models.Booking, error) {
		return nil, nil
	})
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, StateFailed, f.State())
}
