package nakama

import (
	"context"

	"darts/internal/app"
	"darts/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

type notificationSender interface {
	NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error
}

var notificationCodes = map[string]int{
	string(app.EventPlayerJoined):  NotifyPlayerJoined,
	string(app.EventMatchStarted):  NotifyMatchStarted,
	string(app.EventRoundRecorded): NotifyRoundRecorded,
	string(app.EventMatchEnded):    NotifyMatchEnded,
	string(app.EventMatchDeleted):  NotifyMatchDeleted,
}

// NakamaNotifier publishes match events as Nakama in-app notifications.
type NakamaNotifier struct {
	nk     notificationSender
	logger runtime.Logger
}

// NewNakamaNotifier creates a notifier that logs delivery failures to logger.
func NewNakamaNotifier(nk notificationSender, logger runtime.Logger) *NakamaNotifier {
	return &NakamaNotifier{nk: nk, logger: logger}
}

// Publish sends each event to each of its recipients. Only match endings are
// persisted so players who were offline still see the result.
func (n *NakamaNotifier) Publish(ctx context.Context, events ...ports.Event) {
	for _, ev := range events {
		code, ok := notificationCodes[ev.Kind]
		if !ok {
			n.logger.Warn("Skipping notification with unknown kind %q", ev.Kind)
			continue
		}
		persistent := code == NotifyMatchEnded
		for _, userID := range ev.Recipients {
			if userID == "" {
				continue
			}
			if err := n.nk.NotificationSend(ctx, userID, ev.Kind, ev.Content, code, "", persistent); err != nil {
				n.logger.WithFields(map[string]interface{}{
					"user_id": userID,
					"kind":    ev.Kind,
				}).Error("Failed to send notification: %v", err)
			}
		}
	}
}

var _ ports.EventPublisher = (*NakamaNotifier)(nil)
