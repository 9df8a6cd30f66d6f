// Package notify routes outbound messages to an account's preferred chat
// channel, falling back to the stored notification queue when the channel
// is absent or delivery fails.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/geniusbot/core/internal/domain"
	"github.com/geniusbot/core/internal/observability"
	"github.com/geniusbot/core/internal/ports"
	"github.com/google/uuid"
)

// Router implements ports.Notifier. Delivery is best effort: a failed or
// impossible primary send lands in the fallback queue, and queue failures
// are logged rather than surfaced, so business operations never fail on
// notification trouble.
type Router struct {
	sender        ports.ChatSender
	notifications ports.NotificationRepository
	queueCap      int
	logger        *slog.Logger
	nowFn         func() time.Time
}

// NewRouter wires the primary sender and the fallback queue. A nil sender
// is allowed; every notification then goes straight to the queue.
func NewRouter(sender ports.ChatSender, notifications ports.NotificationRepository, queueCap int, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if queueCap <= 0 {
		queueCap = 50
	}
	return &Router{
		sender:        sender,
		notifications: notifications,
		queueCap:      queueCap,
		logger:        logger,
		nowFn:         func() time.Time { return time.Now().UTC() },
	}
}

func (r *Router) Notify(ctx context.Context, account domain.Account, kind, message string) {
	if r.sender != nil && account.LinkedChannelID != "" {
		err := r.sender.Send(ctx, account.LinkedChannelID, message)
		if err == nil {
			return
		}
		r.logger.WarnContext(ctx, "primary notification delivery failed",
			slog.String("module", "notify"),
			slog.String("layer", "adapter"),
			slog.String("operation", "notify"),
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}
	r.queue(ctx, account, kind, message)
}

func (r *Router) queue(ctx context.Context, account domain.Account, kind, message string) {
	observability.NotificationFallbacks.Inc()
	notification := domain.Notification{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Kind:      kind,
		Message:   message,
		CreatedAt: r.nowFn(),
	}
	if err := r.notifications.Push(ctx, notification, r.queueCap); err != nil {
		r.logger.ErrorContext(ctx, "notification fallback enqueue failed",
			slog.String("module", "notify"),
			slog.String("layer", "adapter"),
			slog.String("operation", "notify"),
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}
}
