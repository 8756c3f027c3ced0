package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"toltimed/models"
	"toltimed/services/metrics"
)

type stubSources struct{}

func (stubSources) ListServices(context.Context) ([]models.Service, error) { return testCatalog(), nil }
func (stubSources) ListPractitioners(context.Context) ([]models.Practitioner, error) {
	return testPractitioners(), nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

type recordingReminders struct {
	payloads []models.ReminderPayload
	fireAt   []time.Time
}

func (r *recordingReminders) ScheduleReminder(_ context.Context, p models.ReminderPayload, at time.Time) error {
	r.payloads = append(r.payloads, p)
	r.fireAt = append(r.fireAt, at)
	return nil
}

type serviceHarness struct {
	svc       *DefaultBookingSessionService
	store     *RedisSessionStore
	submitter *stubSubmitter
	notifier  *recordingNotifier
	reminders *recordingReminders
	receipts  *RedisReceiptNavigator
}

func newServiceHarness(t *testing.T) *serviceHarness {
	_, client := newTestRedis(t)
	h := &serviceHarness{
		store:     NewRedisSessionStore(client, time.Hour, time.Minute),
		submitter: &stubSubmitter{},
		notifier:  &recordingNotifier{},
		reminders: &recordingReminders{},
		receipts:  &RedisReceiptNavigator{Client: client},
	}
	h.svc = &DefaultBookingSessionService{
		Catalog:       stubSources{},
		Practitioners: stubSources{},
		Store:         h.store,
		Submitter:     h.submitter,
		Notifier:      h.notifier,
		Navigator:     h.receipts,
		Reminders:     h.reminders,
		Logger:        zap.NewNop(),
		Clock:         func() time.Time { return testNow },
		SubmitTimeout: time.Second,
		ReminderLead:  2 * time.Hour,
	}
	return h
}

// walk drives a fresh session through every stage via the service.
func (h *serviceHarness) walk(t *testing.T, ctx context.Context) string {
	t.Helper()
	view, err := h.svc.InitiateSession(ctx, "user-1", "fcm-token")
	require.NoError(t, err)
	id := view.Session.SessionID

	steps := []func(*Wizard) error{
		func(w *Wizard) error { _, err := w.ToggleService("svc-nurse"); return err },
		func(w *Wizard) error { return w.SelectPractitioner("pr-1") },
		func(w *Wizard) error {
			return w.UpdateSchedule(ScheduleUpdate{
				Frequency: ptr(models.FrequencyWeekly),
				StartDate: ptr("2030-01-06"),
				TotalDays: ptr(14),
			})
		},
		func(w *Wizard) error { _, err := w.SetTimeSlot("11:30"); return err },
	}
	for _, step := range steps {
		_, err := h.svc.UpdateSession(ctx, id, step)
		require.NoError(t, err)
		_, err = h.svc.Advance(ctx, id)
		require.NoError(t, err)
	}
	_, err = h.svc.UpdateSession(ctx, id, func(w *Wizard) error {
		if err := w.ChooseSelf(); err != nil {
			return err
		}
		return w.UpdateSelf(models.SelfSubject{Address: "Westlands"})
	})
	require.NoError(t, err)
	return id
}

func ptr[T any](v T) *T { return &v }

func TestConfirmBookingHappyPath(t *testing.T) {
	h := newServiceHarness(t)
	ctx := WithUser(context.Background(), "user-1")
	id := h.walk(t, ctx)

	view, err := h.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.True(t, view.CanSubmit)
	assert.Equal(t, 2, view.Quote.Multiplier)
	assert.Equal(t, 80.0, view.Quote.TotalCost)

	conf, err := h.svc.ConfirmBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bk-1", conf.Booking.ID)
	assert.Equal(t, "/api/booking/receipts/bk-1", conf.Route)
	assert.Equal(t, "Once a week for 14 days", conf.Receipt.ScheduleDescription)
	assert.Equal(t, "USD", conf.Receipt.Currency)
	assert.Equal(t, 1, h.submitter.Calls())

	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, models.NotificationBookingConfirmed, h.notifier.sent[0].Type)
	assert.Equal(t, "fcm-token", h.notifier.sent[0].Token)

	require.Len(t, h.reminders.fireAt, 1)
	assert.Equal(t, time.Date(2030, 1, 6, 9, 30, 0, 0, time.UTC), h.reminders.fireAt[0])

	receipt, err := h.receipts.GetReceipt(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 80.0, receipt.TotalCost)

	_, err = h.svc.GetSession(ctx, id)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConfirmBookingFailureKeepsSession(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	id := h.walk(t, ctx)
	h.submitter.err = errUpstream

	_, err := h.svc.ConfirmBooking(ctx, id)
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)

	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, models.NotificationBookingFailed, h.notifier.sent[0].Type)
	assert.Empty(t, h.reminders.payloads)

	view, err := h.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, view.FinalizerState)
	assert.Equal(t, "Westlands", view.Session.Subject.Self.Address)
	assert.Equal(t, "11:30", view.Session.Schedule.TimeSlot)
	assert.True(t, view.CanSubmit)

	h.submitter.err = nil
	conf, err := h.svc.ConfirmBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bk-1", conf.Booking.ID)
	assert.Equal(t, 2, h.submitter.Calls())
}

func TestConfirmBookingRejectsConcurrentSubmit(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	id := h.walk(t, ctx)

	h.submitter.block = make(chan struct{})
	h.submitter.started = make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		_, err := h.svc.ConfirmBooking(ctx, id)
		done <- err
	}()
	<-h.submitter.started

	_, err := h.svc.ConfirmBooking(ctx, id)
	require.ErrorIs(t, err, ErrSubmissionInFlight)
	require.ErrorIs(t, h.svc.CancelSession(ctx, id), ErrLocked)

	close(h.submitter.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.submitter.Calls())
}

func TestSessionsAreScopedToTheirOwner(t *testing.T) {
	h := newServiceHarness(t)
	view, err := h.svc.InitiateSession(context.Background(), "user-1", "")
	require.NoError(t, err)

	_, err = h.svc.GetSession(WithUser(context.Background(), "user-2"), view.Session.SessionID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUpdateSessionDoesNotStoreFailedEdits(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	view, err := h.svc.InitiateSession(ctx, "user-1", "")
	require.NoError(t, err)
	id := view.Session.SessionID

	_, err = h.svc.UpdateSession(ctx, id, func(w *Wizard) error {
		if _, err := w.ToggleService("svc-nurse"); err != nil {
			return err
		}
		return w.SelectPractitioner("pr-1")
	})
	require.ErrorIs(t, err, ErrWrongStage)

	view, err = h.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, view.Session.Cart)
}

func TestSearchAndCancel(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	view, err := h.svc.InitiateSession(ctx, "user-1", "")
	require.NoError(t, err)
	id := view.Session.SessionID

	found, err := h.svc.SearchServices(ctx, id, "CAREGIVER")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "svc-care", found[0].ID)

	require.NoError(t, h.svc.CancelSession(ctx, id))
	_, err = h.svc.GetSession(ctx, id)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConfirmBookingRecordsMetrics(t *testing.T) {
	h := newServiceHarness(t)
	reg := prometheus.NewRegistry()
	h.svc.Metrics = metrics.NewBookingMetrics(reg)
	ctx := context.Background()
	id := h.walk(t, ctx)

	h.submitter.err = errUpstream
	_, err := h.svc.ConfirmBooking(ctx, id)
	require.Error(t, err)
	h.submitter.err = nil
	_, err = h.svc.ConfirmBooking(ctx, id)
	require.NoError(t, err)

	counts := map[string]float64{}
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			counts[mf.GetName()+"/"+m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, counts["toltimed_booking_sessions_total/"+metrics.SessionInitiated])
	assert.Equal(t, 1.0, counts["toltimed_booking_submissions_total/"+metrics.OutcomeFailed])
	assert.Equal(t, 1.0, counts["toltimed_booking_submissions_total/"+metrics.OutcomeSubmitted])
}

func TestSessionIsReadOnlyWhileSubmitting(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	id := h.walk(t, ctx)

	h.submitter.err = errUpstream
	h.submitter.block = make(chan struct{})
	h.submitter.started = make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		_, err := h.svc.ConfirmBooking(ctx, id)
		done <- err
	}()
	<-h.submitter.started

	view, err := h.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StateSubmitting, view.FinalizerState)
	assert.False(t, view.CanSubmit)

	_, err = h.svc.UpdateSession(ctx, id, func(w *Wizard) error {
		return w.UpdateSelf(models.SelfSubject{Address: "Kilimani"})
	})
	require.ErrorIs(t, err, ErrLocked)
	_, err = h.svc.Back(ctx, id)
	require.ErrorIs(t, err, ErrLocked)

	close(h.submitter.block)
	var subErr *SubmissionError
	require.ErrorAs(t, <-done, &subErr)

	view, err = h.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StageFinalize, view.Session.Stage)
	assert.Equal(t, StateFailed, view.FinalizerState)
	assert.Equal(t, "Westlands", view.Session.Subject.Self.Address)
	assert.True(t, view.CanSubmit)

	// Once the outcome is stored the session is editable again.
	view, err = h.svc.UpdateSession(ctx, id, func(w *Wizard) error {
		return w.UpdateSelf(models.SelfSubject{Address: "Kilimani"})
	})
	require.NoError(t, err)
	assert.Equal(t, "Kilimani", view.Session.Subject.Self.Address)
}

func TestStaleSubmittingPhaseIsReopened(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	id := h.walk(t, ctx)

	// A request that died mid-submission leaves the phase behind but its lock expires.
	snap, err := h.store.Load(ctx, id)
	require.NoError(t, err)
	snap.Phase = models.PhaseSubmitting
	require.NoError(t, h.store.Save(ctx, snap))

	view, err := h.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StateReady, view.FinalizerState)
	assert.True(t, view.CanSubmit)

	conf, err := h.svc.ConfirmBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bk-1", conf.Booking.ID)
}
