package service

import (
	"context"
	"sync"
	"time"

	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/notify"
	"github.com/AlexFame/bazaar-sub001/internal/repository"
	"github.com/AlexFame/bazaar-sub001/internal/reqctx"
	"go.uber.org/zap"
)

// Notifier is fire-and-forget: it never reports failure to the caller.
type Notifier interface {
	Notify(ctx context.Context, accountID uint64, message, category string)
}

type NotificationService interface {
	Notifier
	List(ctx context.Context, accountID uint64, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, accountID uint64) error
	// Wait blocks until in-flight deliveries finish.
	Wait()
	// Close stops accepting new deliveries, then waits for in-flight ones.
	Close()
}

type notificationService struct {
	repo     repository.NotificationRepository
	accounts repository.AccountRepository
	sender   notify.Sender
	timeout  time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewNotificationService(repo repository.NotificationRepository, accounts repository.AccountRepository, sender notify.Sender, timeout time.Duration, log *zap.Logger) NotificationService {
	if sender == nil {
		sender = notify.Nop{}
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &notificationService{repo: repo, accounts: accounts, sender: sender, timeout: timeout, log: log}
}

// Notify is best-effort; it logs errors but does not return them to avoid breaking main flows.
// Delivery runs detached from the request so a slow channel never delays the response.
func (s *notificationService) Notify(ctx context.Context, accountID uint64, message, category string) {
	if accountID == 0 || message == "" {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Debug("notify: dropped after close", zap.Uint64("account", accountID), zap.String("category", category))
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.deliver(dctx, accountID, message, category)
	}()
}

func (s *notificationService) deliver(ctx context.Context, accountID uint64, message, category string) {
	log := s.log.With(reqctx.Fields(ctx)...).With(zap.Uint64("account", accountID), zap.String("category", category))
	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		log.Warn("notify: load account", zap.Error(err))
		return
	}
	if !acc.NotificationEnabled(category) {
		return
	}
	if err := s.repo.Create(ctx, &model.Notification{AccountID: accountID, Category: category, Body: message}); err != nil {
		log.Warn("notify: store inbox entry", zap.Error(err))
	}
	if err := s.sender.Send(ctx, acc.ExternalID, message); err != nil {
		log.Warn("notify: deliver", zap.Error(err))
	}
}

func (s *notificationService) Wait() {
	s.wg.Wait()
}

func (s *notificationService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *notificationService) List(ctx context.Context, accountID uint64, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if accountID == 0 {
		return nil, 0, nil
	}
	list, err := s.repo.ListByAccount(ctx, accountID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, accountID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, accountID uint64) error {
	if accountID == 0 {
		return nil
	}
	return s.repo.MarkAllRead(ctx, accountID)
}
