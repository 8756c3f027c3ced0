package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"toltimed/models"
)

var testNow = time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)

func testCatalog() []models.Service {
	return []models.Service{
		{ID: "svc-nurse", Name: "Home nursing visit", ShortDescription: "Wound care and vitals", Price: models.PriceOf(40), Category: models.CategoryNursing},
		{ID: "svc-care", Name: "Companion caregiver", ShortDescription: "Daily living support", Price: models.PriceOf(25), Category: models.CategoryCaregiver},
		{ID: "svc-quote", Name: "Ward admission", Category: models.CategoryInPatient},
	}
}

func testPractitioners() []models.Practitioner {
	rating := 4.6
	return []models.Practitioner{
		{
			ID:             "pr-1",
			Name:           "Dr. Amani",
			Specialization: models.Specialization{Name: "Geriatrics"},
			Rating:         &rating,
			Experience:     "8 years",
			Availability:   []models.AvailabilityEntry{models.RangeEntry("9am-5pm")},
		},
		{
			ID:           "pr-2",
			Name:         "Nurse Okoth",
			Availability: []models.AvailabilityEntry{models.SlotEntry("2030-01-06", "10:00", "14:00")},
		},
	}
}

func newTestWizard() *Wizard {
	return NewWizard("sess-1", "user-1", "fcm-token", testCatalog(), testPractitioners(), testNow)
}

// readyWizard walks a wizard to the finalize stage with a daily 5 day schedule.
func readyWizard() *Wizard {
	w := newTestWizard()
	mustDo(w.ToggleService("svc-nurse"))
	mustDo(nil, w.Advance(testNow))
	mustDo(nil, w.SelectPractitioner("pr-1"))
	mustDo(nil, w.Advance(testNow))
	mustDo(nil, w.SetFrequency(models.FrequencyDaily))
	mustDo(nil, w.SetStartDate("2030-01-06"))
	mustDo(nil, w.SetTotalDays(5))
	mustDo(nil, w.Advance(testNow))
	mustDo(w.SetTimeSlot("10:00"))
	mustDo(nil, w.Advance(testNow))
	return w
}

func mustDo(_ any, err error) {
	if err != nil {
		panic(err)
	}
}

type stubSubmitter struct {
	mu       sync.Mutex
	calls    int
	payloads []models.BookingPayload
	err      error
	nilOK    bool
	block    chan struct{}
	started  chan struct{}
}

func (s *stubSubmitter) SubmitBooking(ctx context.Context, payload models.BookingPayload) (*models.Booking, error) {
	s.mu.Lock()
	s.calls++
	s.payloads = append(s.payloads, payload)
	s.mu.Unlock()
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.nilOK {
		return nil, nil
	}
	return &models.Booking{ID: "bk-1", Status: models.BookingStatusConfirmed, CreatedAt: testNow, Payload: payload}, nil
}

func (s *stubSubmitter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var errUpstream = errors.New("upstream unavailable")
