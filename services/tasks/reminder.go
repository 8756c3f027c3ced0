package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toltimed/models"
	"toltimed/services/availability"

	json "github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// NewReminderTask builds an appointment reminder task due at fireAt.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:" + payload.BookingID),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}

// Enqueuer is the subset of *asynq.Client used for scheduling.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqScheduler queues reminders on the asynq Redis queue.
type AsynqScheduler struct {
	Client Enqueuer
}

// ScheduleReminder enqueues payload for delivery at fireAt.
func (s *AsynqScheduler) ScheduleReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("build reminder task: %w", err)
	}
	_, err = s.Client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue reminder %s: %w", payload.BookingID, err)
	}
	return nil
}

// ReminderTime returns the moment a reminder should fire: the appointment
// start less lead. ok is false when the date or time cannot be parsed.
func ReminderTime(startDate, timeSlot string, lead time.Duration, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(models.DateLayout, startDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	minute, ok := availability.ParseClock(timeSlot)
	if !ok {
		return time.Time{}, false
	}
	return day.Add(time.Duration(minute)*time.Minute - lead), true
}
