package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"toltimed/models"
	"toltimed/services/availability"
	"toltimed/services/catalog"
	"toltimed/services/schedule"
)

// Wizard is the in-memory state of one booking session. Moving between
// stages never discards data entered on another stage.
type Wizard struct {
	sessionID      string
	userID         string
	fcmToken       string
	stage          models.Stage
	catalog        []models.Service
	practitioners  []models.Practitioner
	cart           *catalog.Cart
	practitionerID string
	schedule       models.ScheduleConfig
	finalizer      *Finalizer
	createdAt      time.Time
	updatedAt      time.Time
}

// NewWizard starts a session at the catalog stage.
func NewWizard(sessionID, userID, fcmToken string, services []models.Service, practitioners []models.Practitioner, now time.Time) *Wizard {
	return &Wizard{
		sessionID:     sessionID,
		userID:        userID,
		fcmToken:      fcmToken,
		stage:         models.StageCatalog,
		catalog:       append([]models.Service(nil), services...),
		practitioners: append([]models.Practitioner(nil), practitioners...),
		cart:          catalog.NewCart(nil),
		finalizer:     NewFinalizer(models.BookingSubject{}, models.PhaseEditing, "", ""),
		createdAt:     now,
		updatedAt:     now,
	}
}

// Restore rebuilds a wizard from a persisted snapshot.
func Restore(s models.WizardSnapshot) *Wizard {
	stage := s.Stage
	if stage.Index() < 0 {
		stage = models.StageCatalog
	}
	return &Wizard{
		sessionID:      s.SessionID,
		userID:         s.UserID,
		fcmToken:       s.FCMToken,
		stage:          stage,
		catalog:        s.Catalog,
		practitioners:  s.Practitioners,
		cart:           catalog.NewCart(s.Cart),
		practitionerID: s.SelectedPractitioner,
		schedule:       s.Schedule.Clone(),
		finalizer:      NewFinalizer(s.Subject, s.Phase, s.LastError, s.BookingID),
		createdAt:      s.CreatedAt,
		updatedAt:      s.UpdatedAt,
	}
}

// Snapshot returns a copy of the wizard state suitable for persistence.
func (w *Wizard) Snapshot() models.WizardSnapshot {
	subject, phase, lastErr, bookingID := w.finalizer.snapshot()
	return models.WizardSnapshot{
		SessionID:            w.sessionID,
		UserID:               w.userID,
		FCMToken:             w.fcmToken,
		Stage:                w.stage,
		Catalog:              append([]models.Service(nil), w.catalog...),
		Practitioners:        append([]models.Practitioner(nil), w.practitioners...),
		Cart:                 w.cart.Lines(),
		SelectedPractitioner: w.practitionerID,
		Schedule:             w.schedule.Clone(),
		Subject:              subject,
		Phase:                phase,
		LastError:            lastErr,
		BookingID:            bookingID,
		CreatedAt:            w.createdAt,
		UpdatedAt:            w.updatedAt,
	}
}

func (w *Wizard) SessionID() string { return w.sessionID }
func (w *Wizard) UserID() string { return w.userID }
func (w *Wizard) FCMToken() string { return w.fcmToken }
func (w *Wizard) Stage() models.Stage { return w.stage }
func (w *Wizard) Catalog() []models.Service { return w.catalog }
func (w *Wizard) Cart() *catalog.Cart { return w.cart }
func (w *Wizard) Finalizer() *Finalizer { return w.finalizer }
func (w *Wizard) Schedule() models.ScheduleConfig { return w.schedule.Clone() }

// Touch records the time of the latest mutation.
func (w *Wizard) Touch(now time.Time) { w.updatedAt = now }

// Practitioner returns the selected practitioner, if any.
func (w *Wizard) Practitioner() (models.Practitioner, bool) {
	if w.practitionerID == "" {
		return models.Practitioner{}, false
	}
	for _, p := range w.practitioners {
		if p.ID == w.practitionerID {
			return p, true
		}
	}
	return models.Practitioner{}, false
}

// Practitioners returns the practitioner list offered to this session.
func (w *Wizard) Practitioners() []models.Practitioner { return w.practitioners }

func (w *Wizard) requireStage(stage models.Stage) error {
	switch w.finalizer.State() {
	case StateSubmitting:
		return ErrLocked
	case StateSubmitted:
		return ErrAlreadySubmitted
	}
	if w.stage != stage {
		return fmt.Errorf("%w: at %s, need %s", ErrWrongStage, w.stage, stage)
	}
	return nil
}

// SearchServices filters the session catalog.
func (w *Wizard) SearchServices(query string) []models.Service {
	return catalog.Filter(w.catalog, query)
}

// ToggleService adds or removes a catalog service from the cart.
func (w *Wizard) ToggleService(serviceID string) (bool, error) {
	if err := w.requireStage(models.StageCatalog); err != nil {
		return false, err
	}
	svc, ok := catalog.Find(w.catalog, serviceID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownService, serviceID)
	}
	return w.cart.ToggleSelect(svc)
}

// AdjustService changes the quantity or days of a cart line.
func (w *Wizard) AdjustService(serviceID string, dim catalog.Dimension, increment int) error {
	if err := w.requireStage(models.StageCatalog); err != nil {
		return err
	}
	return w.cart.AdjustQuantity(serviceID, dim, increment)
}

// SelectPractitioner picks one practitioner from the session list.
func (w *Wizard) SelectPractitioner(practitionerID string) error {
	if err := w.requireStage(models.StagePractitioner); err != nil {
		return err
	}
	for _, p := range w.practitioners {
		if p.ID == practitionerID {
			w.practitionerID = practitionerID
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownPractitioner, practitionerID)
}

// ScheduleUpdate carries the optional fields of a schedule edit. Nil fields are left untouched.
type ScheduleUpdate struct {
	Frequency    *models.Frequency
	SelectedDays []models.Weekday
	ToggleDay    *models.Weekday
	StartDate    *string
	TotalDays    *int
}

// UpdateSchedule applies a schedule edit. It does not validate completeness;
// that happens when leaving the schedule stage.
func (w *Wizard) UpdateSchedule(u ScheduleUpdate) error {
	if err := w.requireStage(models.StageSchedule); err != nil {
		return err
	}
	cfg := w.schedule.Clone()
	if u.Frequency != nil {
		if !u.Frequency.Valid() {
			return models.NewValidationError(fmt.Sprintf("unknown frequency %q", *u.Frequency))
		}
		schedule.SetFrequency(&cfg, *u.Frequency)
	}
	if u.SelectedDays != nil {
		if err := schedule.SetDays(&cfg, u.SelectedDays); err != nil {
			return err
		}
	}
	if u.ToggleDay != nil {
		if err := schedule.ToggleDay(&cfg, *u.ToggleDay); err != nil {
			return err
		}
	}
	if u.StartDate != nil {
		cfg.StartDate = strings.TrimSpace(*u.StartDate)
	}
	if u.TotalDays != nil {
		cfg.TotalDays = *u.TotalDays
	}
	w.schedule = cfg
	return nil
}

// SetFrequency changes the recurrence, dropping selected days unless it is specific-days.
func (w *Wizard) SetFrequency(f models.Frequency) error {
	return w.UpdateSchedule(ScheduleUpdate{Frequency: &f})
}

// ToggleDay flips a weekday for specific-days schedules.
func (w *Wizard) ToggleDay(day models.Weekday) error {
	return w.UpdateSchedule(ScheduleUpdate{ToggleDay: &day})
}

// SetStartDate stores the first day of care as YYYY-MM-DD.
func (w *Wizard) SetStartDate(date string) error {
	return w.UpdateSchedule(ScheduleUpdate{StartDate: &date})
}

// SetTotalDays stores the programme length.
func (w *Wizard) SetTotalDays(days int) error {
	return w.UpdateSchedule(ScheduleUpdate{TotalDays: &days})
}

// SetTimeSlot stores the chosen time and reports whether it falls inside the
// practitioner's availability. An out-of-range time is kept so the user can
// see and fix it, but the wizard will not advance past the time stage.
func (w *Wizard) SetTimeSlot(timeSlot string) (availability.Result, error) {
	if err := w.requireStage(models.StageTime); err != nil {
		return availability.Result{}, err
	}
	p, ok := w.Practitioner()
	if !ok {
		return availability.Result{}, ErrPractitionerRequired
	}
	w.schedule.TimeSlot = strings.TrimSpace(timeSlot)
	return availability.ValidateTimeOn(w.schedule.StartDate, w.schedule.TimeSlot, p), nil
}

func (w *Wizard) requireFinalize() error {
	return w.requireStage(models.StageFinalize)
}

// ChooseSelf selects the self branch of the finalizer.
func (w *Wizard) ChooseSelf() error {
	if err := w.requireFinalize(); err != nil {
		return err
	}
	return w.finalizer.ChooseSelf()
}

// ChooseOther selects the other-person branch of the finalizer.
func (w *Wizard) ChooseOther() error {
	if err := w.requireFinalize(); err != nil {
		return err
	}
	return w.finalizer.ChooseOther()
}

// UpdateSelf sets the self-booking details.
func (w *Wizard) UpdateSelf(details models.SelfSubject) error {
	if err := w.requireFinalize(); err != nil {
		return err
	}
	return w.finalizer.UpdateSelf(details)
}

// UpdateOther sets the details of the person being booked for.
func (w *Wizard) UpdateOther(details models.OtherSubject) error {
	if err := w.requireFinalize(); err != nil {
		return err
	}
	return w.finalizer.UpdateOther(details)
}

// AttachTestResult records an uploaded attachment reference.
func (w *Wizard) AttachTestResult(ref string) error {
	if err := w.requireFinalize(); err != nil {
		return err
	}
	return w.finalizer.AttachTestResult(ref)
}

// Advance moves to the next stage once the current one is complete.
func (w *Wizard) Advance(now time.Time) error {
	if err := w.gate(now); err != nil {
		return err
	}
	next := w.stage.Index() + 1
	if next >= len(models.Stages) {
		return ErrLastStage
	}
	w.stage = models.Stages[next]
	return nil
}

func (w *Wizard) gate(now time.Time) error {
	switch w.stage {
	case models.StageCatalog:
		if w.cart.Len() == 0 {
			return models.NewValidationError("select at least one service")
		}
	case models.StagePractitioner:
		if _, ok := w.Practitioner(); !ok {
			return models.NewValidationError("select a practitioner")
		}
	case models.StageSchedule:
		return schedule.Validate(w.schedule, now)
	case models.StageTime:
		if w.schedule.TimeSlot == "" {
			return models.NewValidationError("time slot is required")
		}
		p, ok := w.Practitioner()
		if !ok {
			return ErrPractitionerRequired
		}
		if res := availability.ValidateTimeOn(w.schedule.StartDate, w.schedule.TimeSlot, p); !res.Valid {
			return models.NewValidationError(res.Message)
		}
	case models.StageFinalize:
		return ErrLastStage
	}
	return nil
}

// Back returns to the previous stage without clearing anything.
func (w *Wizard) Back() error {
	switch w.finalizer.State() {
	case StateSubmitting:
		return ErrLocked
	case StateSubmitted:
		return ErrAlreadySubmitted
	}
	i := w.stage.Index()
	if i <= 0 {
		return ErrFirstStage
	}
	w.stage = models.Stages[i-1]
	return nil
}

// Quote prices the current cart against the current schedule.
func (w *Wizard) Quote(currency string) models.Quote {
	sessionTotal := w.cart.SessionTotal()
	return models.Quote{
		CartTotal:    w.cart.Total(),
		SessionTotal: sessionTotal,
		Multiplier:   schedule.Multiplier(w.schedule),
		TotalCost:    schedule.Cost(sessionTotal, w.schedule),
		Description:  schedule.Describe(w.schedule),
		Currency:     currency,
	}
}

// Payload assembles the submission payload from the whole session.
func (w *Wizard) Payload(currency string) (models.BookingPayload, error) {
	p, ok := w.Practitioner()
	if !ok {
		return models.BookingPayload{}, ErrPractitionerRequired
	}
	subject := w.finalizer.Subject()
	q := w.Quote(currency)
	forSelf := false
	if v := subject.BookingForSelf(); v != nil {
		forSelf = *v
	}
	return models.BookingPayload{
		SessionID:      w.sessionID,
		UserID:         w.userID,
		Services:       w.cart.Lines(),
		Practitioner:   p,
		Schedule:       w.schedule.Clone(),
		BookingForSelf: forSelf,
		Subject:        subject,
		Multiplier:     q.Multiplier,
		TotalCost:      q.TotalCost,
		Currency:       currency,
	}, nil
}

// Submit sends the booking through submitter, guarded by the finalizer.
func (w *Wizard) Submit(ctx context.Context, timeout time.Duration, submitter Submitter, currency string) (*models.Booking, error) {
	if err := w.requireFinalize(); err != nil {
		return nil, err
	}
	payload, err := w.Payload(currency)
	if err != nil {
		return nil, err
	}
	return w.finalizer.Submit(ctx, timeout, func(ctx context.Context) (*models.Booking, error) {
		return submitter.SubmitBooking(ctx, payload)
	})
}
