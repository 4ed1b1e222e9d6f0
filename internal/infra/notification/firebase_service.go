package notification

import (
	"context"
	"log/slog"

	"refugis/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/pkg/errors"
)

// ErrTopicRejected is returned when FCM refuses the message itself; retrying will not help.
var ErrTopicRejected = errors.New("notification rejected by FCM")

type firebaseService struct {
	client *messaging.Client
	logger *slog.Logger
}

// NewFirebaseService creates a Cloud Messaging sender from the shared Firebase app
func NewFirebaseService(ctx context.Context, app *firebase.App, logger *slog.Logger) (service.NotificationService, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get messaging client")
	}

	return &firebaseService{
		client: client,
		logger: logger,
	}, nil
}

// SendToTopic sends a push notification to every device subscribed to topic
func (s *firebaseService) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	messageID, err := s.client.Send(ctx, message)
	if err != nil {
		if messaging.IsInvalidArgument(err) {
			return errors.Wrapf(ErrTopicRejected, "topic %s: %v", topic, err)
		}

		return errors.Wrapf(err, "failed to send notification to topic %s", topic)
	}

	s.logger.Debug("Notification sent", slog.String("topic", topic), slog.String("message_id", messageID))

	return nil
}
