package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toltimed/models"
	"toltimed/services/catalog"
)

func TestAdvanceRequiresEachStageToBeComplete(t *testing.T) {
	w := newTestWizard()

	var verr *models.ValidationError
	require.ErrorAs(t, w.Advance(testNow), &verr)
	assert.Equal(t, models.StageCatalog, w.Stage())

	_, err := w.ToggleService("svc-nurse")
	require.NoError(t, err)
	require.NoError(t, w.Advance(testNow))
	assert.Equal(t, models.StagePractitioner, w.Stage())

	require.ErrorAs(t, w.Advance(testNow), &verr)
	require.ErrorIs(t, w.SelectPractitioner("nobody"), ErrUnknownPractitioner)
	require.NoError(t, w.SelectPractitioner("pr-1"))
	require.NoError(t, w.Advance(testNow))

	require.NoError(t, w.SetFrequency(models.FrequencySpecificDays))
	require.NoError(t, w.SetStartDate("2029-12-31"))
	require.NoError(t, w.SetTotalDays(14))
	require.ErrorAs(t, w.Advance(testNow), &verr)
	assert.Contains(t, verr.Problems, "select at least one day")
	assert.Contains(t, verr.Problems, "start date cannot be in the past")

	require.NoError(t, w.ToggleDay(models.Wednesday))
	require.NoError(t, w.ToggleDay(models.Monday))
	require.NoError(t, w.SetStartDate("2030-01-06"))
	require.NoError(t, w.Advance(testNow))
	assert.Equal(t, models.StageTime, w.Stage())
	assert.Equal(t, []models.Weekday{models.Monday, models.Wednesday}, w.Schedule().SelectedDays)
}

func TestTimeOutsideAvailabilityBlocksAdvance(t *testing.T) {
	w := newTestWizard()
	mustDo(w.ToggleService("svc-nurse"))
	require.NoError(t, w.Advance(testNow))
	require.NoError(t, w.SelectPractitioner("pr-1"))
	require.NoError(t, w.Advance(testNow))
	require.NoError(t, w.SetFrequency(models.FrequencyDaily))
	require.NoError(t, w.SetStartDate("2030-01-06"))
	require.NoError(t, w.SetTotalDays(3))
	require.NoError(t, w.Advance(testNow))

	var verr *models.ValidationError
	require.ErrorAs(t, w.Advance(testNow), &verr)
	assert.Equal(t, []string{"time slot is required"}, verr.Problems)

	res, err := w.SetTimeSlot("18:00")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Selected time is outside Dr. Amani's availability. Available: 9am-5pm", res.Message)
	assert.Equal(t, "18:00", w.Schedule().TimeSlot)

	require.ErrorAs(t, w.Advance(testNow), &verr)
	assert.Equal(t, models.StageTime, w.Stage())

	res, err = w.SetTimeSlot("5:00 pm")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	require.NoError(t, w.Advance(testNow))
	assert.Equal(t, models.StageFinalize, w.Stage())
	require.ErrorIs(t, w.Advance(testNow), ErrLastStage)
}

func TestBackKeepsEnteredData(t *testing.T) {
	w := readyWizard()
	require.NoError(t, w.ChooseSelf())
	require.NoError(t, w.UpdateSelf(models.SelfSubject{Address: "12 Riverside Dr"}))

	for i := 0; i < 4; i++ {
		require.NoError(t, w.Back())
	}
	assert.Equal(t, models.StageCatalog, w.Stage())
	require.ErrorIs(t, w.Back(), ErrFirstStage)

	assert.Equal(t, 1, w.Cart().Len())
	p, ok := w.Practitioner()
	require.True(t, ok)
	assert.Equal(t, "pr-1", p.ID)
	assert.Equal(t, "10:00", w.Schedule().TimeSlot)
	assert.Equal(t, "12 Riverside Dr", w.Finalizer().Subject().Self.Address)
}

func TestUpdatesOutsideTheirStageAreRejected(t *testing.T) {
	w := newTestWizard()
	require.ErrorIs(t, w.SelectPractitioner("pr-1"), ErrWrongStage)
	require.ErrorIs(t, w.SetFrequency(models.FrequencyDaily), ErrWrongStage)
	_, err := w.SetTimeSlot("10:00")
	require.ErrorIs(t, err, ErrWrongStage)
	require.ErrorIs(t, w.ChooseSelf(), ErrWrongStage)

	_, err = w.ToggleService("missing")
	require.ErrorIs(t, err, ErrUnknownService)
	_, err = w.ToggleService("svc-quote")
	require.ErrorIs(t, err, catalog.ErrMissingPrice)
}

func TestQuoteCombinesCartAndSchedule(t *testing.T) {
	w := newTestWizard()
	mustDo(w.ToggleService("svc-nurse"))
	mustDo(w.ToggleService("svc-care"))
	require.NoError(t, w.AdjustService("svc-care", catalog.DimensionDays, 1))

	q := w.Quote("USD")
	assert.Equal(t, 90.0, q.CartTotal)
	assert.Zero(t, q.Multiplier)
	assert.Zero(t, q.TotalCost)
	assert.Equal(t, "No schedule selected", q.Description)

	require.NoError(t, w.Advance(testNow))
	require.NoError(t, w.SelectPractitioner("pr-2"))
	require.NoError(t, w.Advance(testNow))
	require.NoError(t, w.SetFrequency(models.FrequencyEveryOtherDay))
	require.NoError(t, w.SetTotalDays(7))

	// Line days shape the cart total only; the schedule sets the session count.
	q = w.Quote("USD")
	assert.Equal(t, 90.0, q.CartTotal)
	assert.Equal(t, 65.0, q.SessionTotal)
	assert.Equal(t, 4, q.Multiplier)
	assert.Equal(t, 260.0, q.TotalCost)
	assert.Equal(t, "Every other day for 7 days", q.Description)
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := readyWizard()
	require.NoError(t, w.ChooseOther())
	require.NoError(t, w.UpdateOther(models.OtherSubject{FirstName: "Wanjiru"}))

	snap := w.Snapshot()
	restored := Restore(snap)
	assert.Equal(t, snap, restored.Snapshot())
	assert.Equal(t, StateOtherForm, restored.Finalizer().State())

	// The snapshot does not alias the wizard.
	snap.Schedule.TimeSlot = "23:00"
	assert.Equal(t, "10:00", w.Schedule().TimeSlot)
}

func TestRestoreReopensInterruptedSubmission(t *testing.T) {
	snap := readyWizard().Snapshot()
	snap.Phase = models.PhaseSubmitting
	w := Restore(snap)
	assert.NotEqual(t, StateSubmitting, w.Finalizer().State())
	assert.Equal(t, models.PhaseEditing, w.Snapshot().Phase)
}

func TestPayloadCarriesWholeSession(t *testing.T) {
	w := readyWizard()
	require.NoError(t, w.ChooseSelf())
	require.NoError(t, w.UpdateSelf(models.SelfSubject{Address: "Block C, Apt 4"}))

	p, err := w.Payload("KES")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", p.SessionID)
	assert.Equal(t, "user-1", p.UserID)
	require.Len(t, p.Services, 1)
	assert.Equal(t, "pr-1", p.Practitioner.ID)
	assert.True(t, p.BookingForSelf)
	assert.Equal(t, 5, p.Multiplier)
	assert.Equal(t, 200.0, p.TotalCost)
	assert.Equal(t, "KES", p.Currency)
}
