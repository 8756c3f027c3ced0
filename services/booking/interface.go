package booking

import (
	"context"
	"time"

	"toltimed/models"
	"toltimed/services/metrics"
	"toltimed/services/notification"

	"go.uber.org/zap"
)

// CatalogSource supplies the services offered for booking.
type CatalogSource interface {
	ListServices(ctx context.Context) ([]models.Service, error)
}

// PractitionerSource supplies the practitioners a user can pick from.
type PractitionerSource interface {
	ListPractitioners(ctx context.Context) ([]models.Practitioner, error)
}

// Submitter is the booking submission endpoint.
type Submitter interface {
	SubmitBooking(ctx context.Context, payload models.BookingPayload) (*models.Booking, error)
}

// Navigator hands the receipt to the receipt view and returns its route.
type Navigator interface {
	ShowReceipt(ctx context.Context, receipt models.Receipt) (string, error)
}

// ReminderScheduler queues an appointment reminder.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error
}

// SessionStore persists wizard snapshots between requests.
type SessionStore interface {
	Save(ctx context.Context, snapshot models.WizardSnapshot) error
	Load(ctx context.Context, sessionID string) (models.WizardSnapshot, error)
	Delete(ctx context.Context, sessionID string) error
	AcquireSubmitLock(ctx context.Context, sessionID string) (token string, ok bool, err error)
	ReleaseSubmitLock(ctx context.Context, sessionID, token string) error
	SubmitLockHeld(ctx context.Context, sessionID string) (bool, error)
}

// BookingSessionService defines the interface for managing a stateful booking session.
type BookingSessionService interface {
	InitiateSession(ctx context.Context, userID, fcmToken string) (*SessionView, error)
	GetSession(ctx context.Context, sessionID string) (*SessionView, error)
	UpdateSession(ctx context.Context, sessionID string, fn func(*Wizard) error) (*SessionView, error)
	Advance(ctx context.Context, sessionID string) (*SessionView, error)
	Back(ctx context.Context, sessionID string) (*SessionView, error)
	SearchServices(ctx context.Context, sessionID, query string) ([]models.Service, error)
	CancelSession(ctx context.Context, sessionID string) error
	ConfirmBooking(ctx context.Context, sessionID string) (*Confirmation, error)
}

// DefaultBookingSessionService implements BookingSessionService.
type DefaultBookingSessionService struct {
	Catalog       CatalogSource
	Practitioners PractitionerSource
	Store         SessionStore
	Submitter     Submitter
	Notifier      notification.Notifier
	Navigator     Navigator
	Reminders     ReminderScheduler // optional
	Metrics       *metrics.BookingMetrics
	Logger        *zap.Logger
	Clock         func() time.Time
	SubmitTimeout time.Duration
	ReminderLead  time.Duration
	Currency      string
}

// SessionView is what the API returns for a session: the stored state plus
// everything derived from it.
type SessionView struct {
	Session        models.WizardSnapshot `json:"session"`
	Quote          models.Quote          `json:"quote"`
	FinalizerState FinalizerState        `json:"finalizerState"`
	IsFormValid    bool                  `json:"isFormValid"`
	CanSubmit      bool                  `json:"canSubmit"`
}

// Confirmation is the outcome of a successful submission.
type Confirmation struct {
	Booking models.Booking `json:"booking"`
	Receipt models.Receipt `json:"receipt"`
	Route   string         `json:"route,omitempty"`
}

type userKey struct{}

// WithUser scopes ctx to a user. Sessions owned by another user are then
// reported as not found.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

func userFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey{}).(string)
	return id, ok && id != ""
}
