package repository

import (
	"context"
	"time"

	"github.com/AlexFame/bazaar-sub001/internal/model"
	"gorm.io/gorm"
)

type AccountRepository interface {
	Create(ctx context.Context, acc *model.Account) error
	FindByID(ctx context.Context, id uint64) (*model.Account, error)
	FindByExternalID(ctx context.Context, externalID int64) (*model.Account, error)
	UpdateProfile(ctx context.Context, id uint64, displayName, handle string) error
	TouchLastSeen(ctx context.Context, id uint64, at time.Time) error
	UpdatePreferences(ctx context.Context, id uint64, prefs map[string]bool) error
	SetBan(ctx context.Context, id uint64, banned bool, reason string, at *time.Time) error
	SetAdmin(ctx context.Context, id uint64, admin bool) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a new account. A concurrent insert for the same external id
// fails with gorm.ErrDuplicatedKey.
func (r *accountRepository) Create(ctx context.Context, acc *model.Account) error {
	return r.db.WithContext(ctx).Create(acc).Error
}

func (r *accountRepository) FindByID(ctx context.Context, id uint64) (*model.Account, error) {
	var acc model.Account
	if err := r.db.WithContext(ctx).First(&acc, id).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *accountRepository) FindByExternalID(ctx context.Context, externalID int64) (*model.Account, error) {
	var acc model.Account
	if err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *accountRepository) UpdateProfile(ctx context.Context, id uint64, displayName, handle string) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"display_name": displayName,
			"handle":       handle,
		}).Error
}

func (r *accountRepository) TouchLastSeen(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		UpdateColumn("last_seen_at", at).Error
}

func (r *accountRepository) UpdatePreferences(ctx context.Context, id uint64, prefs map[string]bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{ID: id}).
		Select("Preferences").
		Updates(&model.Account{Preferences: prefs}).Error
}

func (r *accountRepository) SetBan(ctx context.Context, id uint64, banned bool, reason string, at *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"banned":     banned,
			"ban_reason": reason,
			"banned_at":  at,
		}).Error
}

func (r *accountRepository) SetAdmin(ctx context.Context, id uint64, admin bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Update("is_admin", admin).Error
}
