package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toltimed/models"
	"toltimed/services/metrics"
	"toltimed/services/notification"
	"toltimed/services/schedule"
	"toltimed/services/tasks"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCurrency = "USD"

func (s *DefaultBookingSessionService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *DefaultBookingSessionService) currency() string {
	if s.Currency == "" {
		return defaultCurrency
	}
	return s.Currency
}

func (s *DefaultBookingSessionService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// InitiateSession creates a new booking session for userID.
func (s *DefaultBookingSessionService) InitiateSession(ctx context.Context, userID, fcmToken string) (*SessionView, error) {
	services, err := s.Catalog.ListServices(ctx)
	if err != nil {
		s.logger().Error("failed to load service catalog", zap.Error(err))
		return nil, fmt.Errorf("failed to load service catalog: %w", err)
	}
	practitioners, err := s.Practitioners.ListPractitioners(ctx)
	if err != nil {
		s.logger().Error("failed to load practitioners", zap.Error(err))
		return nil, fmt.Errorf("failed to load practitioners: %w", err)
	}

	w := NewWizard(uuid.New().String(), userID, fcmToken, services, practitioners, s.now())
	if err := s.Store.Save(ctx, w.Snapshot()); err != nil {
		s.logger().Error("failed to store booking session", zap.String("sessionId", w.SessionID()), zap.Error(err))
		return nil, fmt.Errorf("failed to store booking session: %w", err)
	}

	s.Metrics.ObserveSession(metrics.SessionInitiated)
	s.logger().Info("booking session initiated",
		zap.String("sessionId", w.SessionID()),
		zap.String("userId", userID),
		zap.Int("services", len(services)),
		zap.Int("practitioners", len(practitioners)),
	)
	return s.view(w), nil
}

func (s *DefaultBookingSessionService) load(ctx context.Context, sessionID string) (*Wizard, error) {
	return s.restore(ctx, sessionID, true)
}

// restore reads a session. With trackFlight set, a session whose submission is
// still running in another request comes back locked.
func (s *DefaultBookingSessionService) restore(ctx context.Context, sessionID string, trackFlight bool) (*Wizard, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	snap, err := s.Store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if userID, ok := userFrom(ctx); ok && snap.UserID != userID {
		s.logger().Warn("session requested by another user", zap.String("sessionId", sessionID), zap.String("userId", userID))
		return nil, ErrSessionNotFound
	}
	w := Restore(snap)
	if trackFlight && snap.Phase == models.PhaseSubmitting {
		held, err := s.Store.SubmitLockHeld(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to read submit lock: %w", err)
		}
		if held {
			w.Finalizer().markInFlight()
		}
	}
	return w, nil
}

// ensureUnlocked refuses edits while a submission or cancellation holds the session.
func (s *DefaultBookingSessionService) ensureUnlocked(ctx context.Context, sessionID string) error {
	held, err := s.Store.SubmitLockHeld(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to read submit lock: %w", err)
	}
	if held {
		return ErrLocked
	}
	return nil
}

func (s *DefaultBookingSessionService) view(w *Wizard) *SessionView {
	f := w.Finalizer()
	return &SessionView{
		Session:        w.Snapshot(),
		Quote:          w.Quote(s.currency()),
		FinalizerState: f.State(),
		IsFormValid:    f.IsFormValid(),
		CanSubmit:      w.Stage() == models.StageFinalize && f.CanSubmit(),
	}
}

// GetSession returns the current state of a session.
func (s *DefaultBookingSessionService) GetSession(ctx context.Context, sessionID string) (*SessionView, error) {
	w, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(w), nil
}

// UpdateSession applies fn to the session and stores the result. Nothing is
// stored when fn fails or while the session is locked for submission.
func (s *DefaultBookingSessionService) UpdateSession(ctx context.Context, sessionID string, fn func(*Wizard) error) (*SessionView, error) {
	w, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnlocked(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	w.Touch(s.now())
	// The lock may have been taken while fn ran.
	if err := s.ensureUnlocked(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := s.Store.Save(ctx, w.Snapshot()); err != nil {
		s.logger().Error("failed to update booking session", zap.String("sessionId", sessionID), zap.Error(err))
		return nil, fmt.Errorf("failed to update booking session: %w", err)
	}
	return s.view(w), nil
}

// Advance moves the session to its next stage.
func (s *DefaultBookingSessionService) Advance(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.UpdateSession(ctx, sessionID, func(w *Wizard) error {
		return w.Advance(s.now())
	})
}

// Back moves the session to its previous stage.
func (s *DefaultBookingSessionService) Back(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.UpdateSession(ctx, sessionID, func(w *Wizard) error {
		return w.Back()
	})
}

// SearchServices filters the session catalog by query.
func (s *DefaultBookingSessionService) SearchServices(ctx context.Context, sessionID, query string) ([]models.Service, error) {
	w, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return w.SearchServices(query), nil
}

// CancelSession discards a session that is not being submitted.
func (s *DefaultBookingSessionService) CancelSession(ctx context.Context, sessionID string) error {
	if _, err := s.load(ctx, sessionID); err != nil {
		return err
	}
	token, ok, err := s.Store.AcquireSubmitLock(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to lock booking session: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	defer s.release(ctx, sessionID, token)

	if err := s.Store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to cancel booking session: %w", err)
	}
	s.Metrics.ObserveSession(metrics.SessionCancelled)
	s.logger().Info("booking session cancelled", zap.String("sessionId", sessionID))
	return nil
}

func (s *DefaultBookingSessionService) release(ctx context.Context, sessionID, token string) {
	if err := s.Store.ReleaseSubmitLock(context.WithoutCancel(ctx), sessionID, token); err != nil {
		s.logger().Warn("failed to release submit lock", zap.String("sessionId", sessionID), zap.Error(err))
	}
}

// ConfirmBooking submits the session. Only one submission per session runs at
// a time. On failure the session is kept with every entered value so the user
// can retry; on success the receipt is published and the session removed.
func (s *DefaultBookingSessionService) ConfirmBooking(ctx context.Context, sessionID string) (*Confirmation, error) {
	if _, err := s.load(ctx, sessionID); err != nil {
		return nil, err
	}
	token, ok, err := s.Store.AcquireSubmitLock(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock booking session: %w", err)
	}
	if !ok {
		return nil, ErrSubmissionInFlight
	}
	defer s.release(ctx, sessionID, token)

	// Reload under the lock so a submission that finished meanwhile is seen.
	w, err := s.restore(ctx, sessionID, false)
	if err != nil {
		return nil, err
	}

	log := s.logger().With(zap.String("sessionId", sessionID), zap.String("userId", w.UserID()))
	marked := w.Finalizer().CanSubmit()
	if marked {
		// Other requests read the persisted phase and stay read-only until
		// this one saves the outcome.
		inFlight := w.Snapshot()
		inFlight.Phase = models.PhaseSubmitting
		inFlight.UpdatedAt = s.now()
		if err := s.Store.Save(ctx, inFlight); err != nil {
			log.Error("failed to mark booking session as submitting", zap.Error(err))
			return nil, fmt.Errorf("failed to mark booking session as submitting: %w", err)
		}
	}
	started := time.Now()
	booking, err := w.Submit(ctx, s.SubmitTimeout, s.Submitter, s.currency())
	if err != nil {
		var subErr *SubmissionError
		if !errors.As(err, &subErr) {
			s.Metrics.ObserveSubmission(metrics.OutcomeRejected, time.Since(started))
			if marked {
				if saveErr := s.Store.Save(context.WithoutCancel(ctx), w.Snapshot()); saveErr != nil {
					log.Error("failed to restore session after rejected submission", zap.Error(saveErr))
				}
			}
			return nil, err
		}
		outcome := metrics.OutcomeFailed
		if subErr.Code == "submissionTimeout" {
			outcome = metrics.OutcomeTimeout
		}
		s.Metrics.ObserveSubmission(outcome, time.Since(started))
		log.Error("booking submission failed", zap.String("code", subErr.Code), zap.Error(subErr.Err))
		s.notify(ctx, log, notification.BookingFailed(w.UserID(), w.FCMToken(), subErr.Err, s.now()))
		w.Touch(s.now())
		if saveErr := s.Store.Save(context.WithoutCancel(ctx), w.Snapshot()); saveErr != nil {
			log.Error("failed to store session after failed submission", zap.Error(saveErr))
		}
		return nil, err
	}
	s.Metrics.ObserveSubmission(metrics.OutcomeSubmitted, time.Since(started))
	log.Info("booking submitted", zap.String("bookingId", booking.ID), zap.Float64("totalCost", booking.Payload.TotalCost))

	// A submitted snapshot stops a retry if the delete below does not go through.
	w.Touch(s.now())
	if err := s.Store.Save(ctx, w.Snapshot()); err != nil {
		log.Warn("failed to store submitted session", zap.Error(err))
	}

	s.notify(ctx, log, notification.BookingConfirmed(w.UserID(), w.FCMToken(), *booking, s.now()))
	s.scheduleReminder(ctx, log, w, *booking)

	receipt := NewReceipt(*booking, s.now())
	conf := &Confirmation{Booking: *booking, Receipt: receipt}
	if s.Navigator != nil {
		route, err := s.Navigator.ShowReceipt(ctx, receipt)
		if err != nil {
			log.Error("failed to publish receipt", zap.String("bookingId", booking.ID), zap.Error(err))
		}
		conf.Route = route
	}

	if err := s.Store.Delete(ctx, sessionID); err != nil {
		log.Warn("failed to delete submitted session", zap.Error(err))
	}
	return conf, nil
}

func (s *DefaultBookingSessionService) notify(ctx context.Context, log *zap.Logger, n models.Notification) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, n); err != nil {
		log.Warn("failed to send notification", zap.String("type", n.Type), zap.Error(err))
	}
}

func (s *DefaultBookingSessionService) scheduleReminder(ctx context.Context, log *zap.Logger, w *Wizard, booking models.Booking) {
	if s.Reminders == nil {
		return
	}
	cfg := booking.Payload.Schedule
	fireAt, ok := tasks.ReminderTime(cfg.StartDate, cfg.TimeSlot, s.ReminderLead, s.now().Location())
	if !ok || !fireAt.After(s.now()) {
		log.Debug("no reminder scheduled", zap.String("startDate", cfg.StartDate), zap.String("timeSlot", cfg.TimeSlot))
		return
	}
	payload := models.ReminderPayload{
		BookingID: booking.ID,
		UserID:    w.UserID(),
		Token:     w.FCMToken(),
		Title:     "Upcoming appointment",
		Body:      fmt.Sprintf("%s with %s at %s.", schedule.Describe(cfg), booking.Payload.Practitioner.Name, cfg.TimeSlot),
		FireDate:  fireAt.Format(time.RFC3339),
	}
	if err := s.Reminders.ScheduleReminder(ctx, payload, fireAt); err != nil {
		log.Warn("failed to schedule reminder", zap.String("bookingId", booking.ID), zap.Error(err))
	}
}

// NewReceipt derives the receipt view of a booking.
func NewReceipt(b models.Booking, issuedAt time.Time) models.Receipt {
	cfg := b.Payload.Schedule
	return models.Receipt{
		BookingID:           b.ID,
		PractitionerName:    b.Payload.Practitioner.Name,
		ScheduleDescription: schedule.Describe(cfg),
		StartDate:           cfg.StartDate,
		TimeSlot:            cfg.TimeSlot,
		TotalCost:           b.Payload.TotalCost,
		Currency:            b.Payload.Currency,
		IssuedAt:            issuedAt,
		Booking:             b,
	}
}
