package apiapp

import (
	"context"

	"go.uber.org/zap"

	messagessvc "github.com/olzhas-sembi/dating-backend/internal/services/messages"
	swipesvc "github.com/olzhas-sembi/dating-backend/internal/services/swipes"
)

// loggingNotifier is the default outbound event sink: events are logged
// for downstream consumers to tail. Delivery infrastructure (push,
// websockets) plugs in behind the same interfaces.
type loggingNotifier struct {
	logger *zap.Logger
}

func newLoggingNotifier(logger *zap.Logger) *loggingNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loggingNotifier{logger: logger}
}

func (n *loggingNotifier) MatchUpdated(_ context.Context, event swipesvc.MatchEvent) {
	n.logger.Info("match_updated",
		zap.String("event_id", event.ID),
		zap.Int64("match_id", event.MatchID),
		zap.Int64("actor_user_id", event.ActorUserID),
		zap.Int64("other_user_id", event.OtherUserID),
		zap.String("status", event.Status),
		zap.Time("at", event.At),
	)
}

func (n *loggingNotifier) MessageSent(_ context.Context, event messagessvc.MessageEvent) {
	n.logger.Info("message_sent",
		zap.String("event_id", event.ID),
		zap.Int64("message_id", event.MessageID),
		zap.Int64("match_id", event.MatchID),
		zap.Int64("sender_id", event.SenderID),
		zap.Int64("recipient_id", event.RecipientID),
		zap.Time("at", event.At),
	)
}
