package service

import (
	"context"
	"errors"
	"time"

	"github.com/AlexFame/bazaar-sub001/internal/auth"
	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IdentityResolver maps a verified external identity to an internal account,
// creating the account on first sight.
type IdentityResolver interface {
	Resolve(ctx context.Context, ident *auth.ExternalIdentity) (*model.Account, error)
}

type identityResolver struct {
	accounts repository.AccountRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewIdentityResolver(accounts repository.AccountRepository, log *zap.Logger) IdentityResolver {
	return &identityResolver{accounts: accounts, log: log, now: time.Now}
}

// Resolve returns the account for ident. A banned account is returned together
// with ErrAccountBanned so callers can explain the ban.
func (r *identityResolver) Resolve(ctx context.Context, ident *auth.ExternalIdentity) (*model.Account, error) {
	if ident == nil || ident.ID <= 0 {
		return nil, auth.ErrMalformedPayload
	}
	acc, err := r.accounts.FindByExternalID(ctx, ident.ID)
	switch {
	case err == nil:
		r.refresh(ctx, acc, ident)
	case errors.Is(err, gorm.ErrRecordNotFound):
		acc, err = r.create(ctx, ident)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	if acc.Banned {
		return acc, ErrAccountBanned
	}
	return acc, nil
}

func (r *identityResolver) create(ctx context.Context, ident *auth.ExternalIdentity) (*model.Account, error) {
	now := r.now().UTC()
	acc := &model.Account{
		ExternalID:  ident.ID,
		DisplayName: ident.DisplayName(),
		Handle:      ident.Username,
		Preferences: map[string]bool{},
		LastSeenAt:  &now,
	}
	err := r.accounts.Create(ctx, acc)
	if err == nil {
		r.log.Info("account created", zap.Uint64("account", acc.ID), zap.Int64("external_id", ident.ID))
		return acc, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}
	// Lost the race to a concurrent first login; the winner's row is the account.
	return r.accounts.FindByExternalID(ctx, ident.ID)
}

// refresh keeps the cosmetic fields in step with the host. Failures only get logged.
func (r *identityResolver) refresh(ctx context.Context, acc *model.Account, ident *auth.ExternalIdentity) {
	name, handle := ident.DisplayName(), ident.Username
	if name != acc.DisplayName || handle != acc.Handle {
		if err := r.accounts.UpdateProfile(ctx, acc.ID, name, handle); err != nil {
			r.log.Warn("refresh profile failed", zap.Uint64("account", acc.ID), zap.Error(err))
		} else {
			acc.DisplayName, acc.Handle = name, handle
		}
	}
	now := r.now().UTC()
	if err := r.accounts.TouchLastSeen(ctx, acc.ID, now); err != nil {
		r.log.Warn("touch last seen failed", zap.Uint64("account", acc.ID), zap.Error(err))
		return
	}
	acc.LastSeenAt = &now
}
