package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlexFame/bazaar-sub001/internal/authz"
	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Preference keys an account may toggle.
var knownPreferences = map[string]bool{
	model.NotifyMessages: true,
	model.NotifyOffers:   true,
}

type AccountService interface {
	Get(ctx context.Context, id uint64) (*model.Account, error)
	UpdatePreferences(ctx context.Context, actor *model.Account, prefs map[string]bool) (*model.Account, error)
	Ban(ctx context.Context, actor *model.Account, targetID uint64, reason string) (*model.Account, error)
	Unban(ctx context.Context, actor *model.Account, targetID uint64) (*model.Account, error)
}

type accountService struct {
	repo repository.AccountRepository
	log  *zap.Logger
}

func NewAccountService(repo repository.AccountRepository, log *zap.Logger) AccountService {
	return &accountService{repo: repo, log: log}
}

func (s *accountService) Get(ctx context.Context, id uint64) (*model.Account, error) {
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return acc, nil
}

// UpdatePreferences merges prefs into the actor's own preference map.
func (s *accountService) UpdatePreferences(ctx context.Context, actor *model.Account, prefs map[string]bool) (*model.Account, error) {
	if actor == nil || actor.ID == 0 {
		return nil, ErrForbidden
	}
	if actor.Banned {
		return nil, ErrAccountBanned
	}
	for k := range prefs {
		if !knownPreferences[k] {
			return nil, fmt.Errorf("%w: unknown preference %q", ErrBadRequest, k)
		}
	}
	acc, err := s.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]bool, len(acc.Preferences)+len(prefs))
	for k, v := range acc.Preferences {
		merged[k] = v
	}
	for k, v := range prefs {
		merged[k] = v
	}
	if err := s.repo.UpdatePreferences(ctx, acc.ID, merged); err != nil {
		return nil, err
	}
	acc.Preferences = merged
	return acc, nil
}

func (s *accountService) Ban(ctx context.Context, actor *model.Account, targetID uint64, reason string) (*model.Account, error) {
	if err := authorize(ctx, s.log, actorOf(actor), authz.BanAccount, authz.Resource{}); err != nil {
		return nil, err
	}
	if targetID == actor.ID {
		return nil, fmt.Errorf("%w: cannot ban yourself", ErrBadRequest)
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	now := time.Now().UTC()
	if err := s.repo.SetBan(ctx, target.ID, true, reason, &now); err != nil {
		return nil, err
	}
	s.log.Info("account banned", zap.Uint64("actor", actor.ID), zap.Uint64("account", target.ID), zap.String("reason", reason))
	target.Banned, target.BanReason, target.BannedAt = true, reason, &now
	return target, nil
}

func (s *accountService) Unban(ctx context.Context, actor *model.Account, targetID uint64) (*model.Account, error) {
	if err := authorize(ctx, s.log, actorOf(actor), authz.BanAccount, authz.Resource{}); err != nil {
		return nil, err
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetBan(ctx, target.ID, false, "", nil); err != nil {
		return nil, err
	}
	s.log.Info("account unbanned", zap.Uint64("actor", actor.ID), zap.Uint64("account", target.ID))
	target.Banned, target.BanReason, target.BannedAt = false, "", nil
	return target, nil
}
