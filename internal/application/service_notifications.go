package application

import (
	"context"
	"strings"
)

// Notifications returns the account's fallback-queue records, newest first,
// for the web polling interface.
func (s *Service) Notifications(ctx context.Context, accountID string) ([]NotificationItem, error) {
	rows, err := s.notifications.ListFor(ctx, strings.TrimSpace(accountID))
	if err != nil {
		return nil, err
	}
	items := make([]NotificationItem, 0, len(rows))
	for _, n := range rows {
		items = append(items, NotificationItem{
			ID:        n.ID,
			Kind:      n.Kind,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
			Read:      n.Read,
		})
	}
	return items, nil
}

// UnreadNotificationCount backs the web navbar badge.
func (s *Service) UnreadNotificationCount(ctx context.Context, accountID string) (int, error) {
	return s.notifications.CountUnread(ctx, strings.TrimSpace(accountID))
}

// MarkNotificationsRead acknowledges fallback notifications; with no IDs it
// acknowledges all of them.
func (s *Service) MarkNotificationsRead(ctx context.Context, accountID string, ids []string) (int64, error) {
	return s.notifications.MarkRead(ctx, strings.TrimSpace(accountID), ids)
}
