package sqlite

import (
	"context"
	"errors"

	"github.com/geniusbot/core/internal/domain"
	"gorm.io/gorm/clause"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

// Replace upserts on the account ID primary key, which is what enforces the
// at-most-one-session invariant at the storage level.
func (r *sessionRepository) Replace(ctx context.Context, session domain.Session) error {
	rec := sessionModel{
		AccountID: session.AccountID,
		Token:     session.Token,
		Origin:    session.Origin,
		CreatedAt: session.CreatedAt.UTC(),
	}
	return withWriteRetry(ctx, "session_replace", func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "account_id"}},
				UpdateAll: true,
			}).
			Create(&rec).Error
	})
}

func (r *sessionRepository) GetByAccount(ctx context.Context, accountID string) (domain.Session, error) {
	var rec sessionModel
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, err
	}
	return toDomainSession(rec), nil
}

func (r *sessionRepository) Delete(ctx context.Context, accountID string) error {
	return withWriteRetry(ctx, "session_delete", func() error {
		return r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&sessionModel{}).Error
	})
}
