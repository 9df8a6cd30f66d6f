package sqlite

import (
	"context"

	"github.com/geniusbot/core/internal/domain"
	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

// Push appends to the account's queue and trims the overflow beyond cap in
// the same transaction, keeping the bounded-FIFO property under races.
func (r *notificationRepository) Push(ctx context.Context, notification domain.Notification, cap int) error {
	rec := notificationModel{
		NotificationID: notification.ID,
		AccountID:      notification.AccountID,
		Kind:           notification.Kind,
		Message:        notification.Message,
		CreatedAt:      notification.CreatedAt.UTC(),
		IsRead:         notification.Read,
	}
	return withWriteRetry(ctx, "notification_push", func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			if cap <= 0 {
				return nil
			}
			var count int64
			if err := tx.Model(&notificationModel{}).
				Where("account_id = ?", notification.AccountID).
				Count(&count).Error; err != nil {
				return err
			}
			if count <= int64(cap) {
				return nil
			}
			var overflow []string
			if err := tx.Model(&notificationModel{}).
				Where("account_id = ?", notification.AccountID).
				Order("created_at").
				Limit(int(count) - cap).
				Pluck("notification_id", &overflow).Error; err != nil {
				return err
			}
			return tx.Where("notification_id IN ?", overflow).Delete(&notificationModel{}).Error
		})
	})
}

func (r *notificationRepository) ListFor(ctx context.Context, accountID string) ([]domain.Notification, error) {
	var rows []notificationModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	notifications := make([]domain.Notification, 0, len(rows))
	for _, rec := range rows {
		notifications = append(notifications, toDomainNotification(rec))
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, accountID string, ids []string) (int64, error) {
	var affected int64
	err := withWriteRetry(ctx, "notification_mark_read", func() error {
		query := r.db.WithContext(ctx).
			Model(&notificationModel{}).
			Where("account_id = ? AND is_read = ?", accountID, false)
		if len(ids) > 0 {
			query = query.Where("notification_id IN ?", ids)
		}
		res := query.Update("is_read", true)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, accountID string) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("account_id = ? AND is_read = ?", accountID, false).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
