package cron

import (
	"context"
	"fmt"
	"time"

	"toltimed/config"
	"toltimed/models"
	"toltimed/services/notification"
	"toltimed/services/tasks"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderRedisOpt is the asynq connection for the reminder queue.
func ReminderRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}
}

// InitReminderWorker starts the reminder worker in the background. The caller
// owns the returned server and shuts it down.
func InitReminderWorker(notifier notification.Notifier, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		ReminderRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, HandleReminderTask(notifier, logger))

	go func() {
		logger.Info("starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Warn("reminder worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err),
			)
			if attempts == maxAttempts {
				logger.Error("reminder worker gave up; reminders will not be delivered")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandleReminderTask delivers a queued appointment reminder.
func HandleReminderTask(notifier notification.Notifier, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
		}

		logger.Info("sending appointment reminder", zap.String("bookingId", p.BookingID), zap.String("userId", p.UserID))
		err := notifier.Notify(ctx, models.Notification{
			ID:     uuid.New().String(),
			UserID: p.UserID,
			Token:  p.Token,
			Type:   models.NotificationReminder,
			Title:  p.Title,
			Body:   p.Body,
			Data: map[string]string{
				"bookingId": p.BookingID,
				"fireDate":  p.FireDate,
			},
			CreatedAt: time.Now(),
		})
		if err != nil {
			logger.Warn("failed to send reminder", zap.String("bookingId", p.BookingID), zap.Error(err))
		}
		return err
	}
}
