package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/geniusbot/core/internal/domain"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

func (r *accountRepository) Create(ctx context.Context, account domain.Account) error {
	rec := accountModel{
		AccountID:      account.ID,
		Username:       account.Username,
		PasswordHash:   account.PasswordHash,
		Origin:         account.CreationOrigin,
		ChannelID:      account.LinkedChannelID,
		FailedAttempts: account.FailedAttempts,
		LockedUntil:    nullableTime(account.LockedUntil),
		CreatedAt:      account.CreatedAt.UTC(),
	}
	return withWriteRetry(ctx, "account_create", func() error {
		if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrConflict
			}
			return err
		}
		return nil
	})
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getWhere(ctx, "account_id = ?", id)
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.getWhere(ctx, "username = ?", username)
}

func (r *accountRepository) GetByOrigin(ctx context.Context, origin string) (domain.Account, error) {
	return r.getWhere(ctx, "origin = ?", origin)
}

func (r *accountRepository) GetByChannel(ctx context.Context, channelHandle string) (domain.Account, error) {
	return r.getWhere(ctx, "channel_id = ?", channelHandle)
}

func (r *accountRepository) getWhere(ctx context.Context, query string, arg any) (domain.Account, error) {
	var rec accountModel
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, err
	}
	account, err := toDomainAccount(rec)
	if err != nil {
		logMalformedRow(ctx, "accounts", err)
		return domain.Account{}, domain.ErrNotFound
	}
	return account, nil
}

func (r *accountRepository) SetLockState(ctx context.Context, id string, failedAttempts int, lockedUntil time.Time) error {
	return withWriteRetry(ctx, "account_set_lock_state", func() error {
		res := r.db.WithContext(ctx).
			Model(&accountModel{}).
			Where("account_id = ?", id).
			Updates(map[string]any{
				"failed_attempts": failedAttempts,
				"locked_until":    nullableTime(lockedUntil),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *accountRepository) SetChannel(ctx context.Context, id, channelHandle string) error {
	return withWriteRetry(ctx, "account_set_channel", func() error {
		res := r.db.WithContext(ctx).
			Model(&accountModel{}).
			Where("account_id = ?", id).
			Update("channel_id", channelHandle)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *accountRepository) RebindOrigin(ctx context.Context, id, origin string) error {
	return withWriteRetry(ctx, "account_rebind_origin", func() error {
		res := r.db.WithContext(ctx).
			Model(&accountModel{}).
			Where("account_id = ?", id).
			Update("origin", origin)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				// Another live account owns the requesting origin.
				return domain.ErrDuplicateOrigin
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *accountRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&accountModel{}).Order("created_at").Pluck("account_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *accountRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&accountModel{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
