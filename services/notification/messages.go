package notification

import (
	"fmt"
	"time"

	"toltimed/models"

	"github.com/google/uuid"
)

// BookingConfirmed builds the success message for a submitted booking.
func BookingConfirmed(userID, token string, booking models.Booking, now time.Time) models.Notification {
	p := booking.Payload
	return models.Notification{
		ID:     uuid.New().String(),
		UserID: userID,
		Token:  token,
		Type:   models.NotificationBookingConfirmed,
		Title:  "Booking confirmed",
		Body: fmt.Sprintf("Your booking with %s starts %s at %s. Total %.2f %s.",
			p.Practitioner.Name, p.Schedule.StartDate, p.Schedule.TimeSlot, p.TotalCost, p.Currency),
		Data: map[string]string{
			"bookingId": booking.ID,
		},
		CreatedAt: now,
	}
}

// BookingFailed builds the error message for a rejected submission.
func BookingFailed(userID, token string, cause error, now time.Time) models.Notification {
	return models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		Type:      models.NotificationBookingFailed,
		Title:     "Booking failed",
		Body:      "We could not complete your booking. Your details are saved, please try again.",
		Data:      map[string]string{"reason": cause.Error()},
		CreatedAt: now,
	}
}
