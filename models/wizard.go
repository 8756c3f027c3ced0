package models

import "time"

// Stage is a step of the booking wizard.
type Stage string

const (
	StageCatalog      Stage = "catalog"
	StagePractitioner Stage = "practitioner"
	StageSchedule     Stage = "schedule"
	StageTime         Stage = "time"
	StageFinalize     Stage = "finalize"
)

// Stages lists the wizard steps in order.
var Stages = []Stage{StageCatalog, StagePractitioner, StageSchedule, StageTime, StageFinalize}

// Index returns the position of s in Stages, or -1.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// SubmissionPhase tracks the finalizer beyond form entry.
type SubmissionPhase string

const (
	PhaseEditing    SubmissionPhase = "editing"
	PhaseSubmitting SubmissionPhase = "submitting"
	PhaseSubmitted  SubmissionPhase = "submitted"
	PhaseFailed     SubmissionPhase = "failed"
)

// WizardSnapshot is a self-contained copy of a booking session's state.
type WizardSnapshot struct {
	SessionID            string            `json:"sessionId"`
	UserID               string            `json:"userId"`
	FCMToken             string            `json:"fcmToken,omitempty"`
	Stage                Stage             `json:"stage"`
	Catalog              []Service         `json:"catalog"`
	Practitioners        []Practitioner    `json:"practitioners"`
	Cart                 []SelectedService `json:"cart"`
	SelectedPractitioner string            `json:"selectedPractitionerId,omitempty"`
	Schedule             ScheduleConfig    `json:"scheduleConfig"`
	Subject              BookingSubject    `json:"bookingDetails"`
	Phase                SubmissionPhase   `json:"phase"`
	LastError            string            `json:"lastError,omitempty"`
	BookingID            string            `json:"bookingId,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
}

// Quote is the derived pricing of a wizard at a point in time.
type Quote struct {
	CartTotal    float64 `json:"cartTotal"`
	SessionTotal float64 `json:"sessionTotal"`
	Multiplier   int     `json:"multiplier"`
	TotalCost    float64 `json:"totalCost"`
	Description  string  `json:"scheduleDescription"`
	Currency     string  `json:"currency"`
}
