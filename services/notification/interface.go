package notification

import (
	"context"
	"errors"
	"fmt"

	"toltimed/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Notifier delivers booking outcome messages to the user.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// MessageSender is the subset of *messaging.Client used to push messages.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier pushes notifications through Firebase Cloud Messaging.
type FCMNotifier struct {
	Client MessageSender
	Logger *zap.Logger
}

// NewFCMNotifier wraps an FCM client.
func NewFCMNotifier(client MessageSender, logger *zap.Logger) *FCMNotifier {
	return &FCMNotifier{Client: client, Logger: logger}
}

// Notify sends n to its device token. Notifications without a token are skipped.
func (f *FCMNotifier) Notify(ctx context.Context, n models.Notification) error {
	if n.Token == "" {
		f.Logger.Debug("no FCM token, push skipped", zap.String("userId", n.UserID), zap.String("type", n.Type))
		return nil
	}
	data := make(map[string]string, len(n.Data)+2)
	for k, v := range n.Data {
		data[k] = v
	}
	data["type"] = n.Type
	if _, ok := data["role"]; !ok {
		data["role"] = "user"
	}

	msg := &messaging.Message{
		Token: n.Token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	id, err := f.Client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	f.Logger.Info("push sent", zap.String("userId", n.UserID), zap.String("messageId", id))
	return nil
}

// LogNotifier writes notifications to the log. It stands in for a push channel
// in development.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l *LogNotifier) Notify(_ context.Context, n models.Notification) error {
	l.Logger.Info("notification",
		zap.String("id", n.ID),
		zap.String("userId", n.UserID),
		zap.String("type", n.Type),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
	)
	return nil
}

// MultiNotifier fans a notification out to every channel and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
