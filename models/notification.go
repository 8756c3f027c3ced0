package models

import "time"

// Notification outcome kinds.
const (
	NotificationBookingConfirmed = "booking_confirmed"
	NotificationBookingFailed    = "booking_failed"
	NotificationReminder         = "appointment_reminder"
)

// Notification is a toast/push message about a booking outcome.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Token     string            `json:"-"` // device push token, may be empty
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ReminderPayload is the asynq task body for an appointment reminder.
type ReminderPayload struct {
	BookingID string `json:"bookingId"`
	UserID    string `json:"userId"`
	Token     string `json:"token,omitempty"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	FireDate  string `json:"fireDate"`
}
