package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	mu    sync.Mutex
	calls []int64
	err   error
	delay time.Duration
}

func (s *stubSender) Send(ctx context.Context, externalID int64, _ string) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, externalID)
	return s.err
}

func (s *stubSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func TestNotify_DeliversAndStoresInbox(t *testing.T) {
	f := newFixture(t)
	sender := &stubSender{}
	svc := NewNotificationService(repository.NewNotificationRepository(f.db), f.accounts, sender, time.Second, f.log)
	acc := f.account(t, 501)

	svc.Notify(context.Background(), acc.ID, "hello", model.NotifyMessages)
	svc.Wait()

	assert.Equal(t, 1, sender.count())
	list, unread, err := svc.List(context.Background(), acc.ID, true, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hello", list[0].Body)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, svc.MarkAllRead(context.Background(), acc.ID))
	_, unread, err = svc.List(context.Background(), acc.ID, true, 10)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestNotify_DisabledCategoryIsNoop(t *testing.T) {
	f := newFixture(t)
	sender := &stubSender{}
	svc := NewNotificationService(repository.NewNotificationRepository(f.db), f.accounts, sender, time.Second, f.log)
	acc := f.account(t, 502, func(a *model.Account) {
		a.Preferences = map[string]bool{model.NotifyOffers: false}
	})

	svc.Notify(context.Background(), acc.ID, "offer!", model.NotifyOffers)
	svc.Notify(context.Background(), acc.ID, "unknown category", "digest")
	svc.Wait()

	assert.Equal(t, 1, sender.count(), "only the unknown, default-enabled category is delivered")
}

func TestNotify_FailuresAreSwallowed(t *testing.T) {
	f := newFixture(t)
	sender := &stubSender{err: errors.New("channel down")}
	svc := NewNotificationService(repository.NewNotificationRepository(f.db), f.accounts, sender, time.Second, f.log)
	acc := f.account(t, 503)

	svc.Notify(context.Background(), acc.ID, "x", model.NotifyMessages)
	svc.Notify(context.Background(), 99999, "nobody", model.NotifyMessages)
	svc.Wait()
	assert.Equal(t, 1, sender.count())
}

func TestNotify_DoesNotBlockCaller(t *testing.T) {
	f := newFixture(t)
	sender := &stubSender{delay: time.Hour}
	svc := NewNotificationService(repository.NewNotificationRepository(f.db), f.accounts, sender, 50*time.Millisecond, f.log)
	acc := f.account(t, 504)

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	svc.Notify(ctx, acc.ID, "slow", model.NotifyMessages)
	cancel() // the request ends; delivery keeps its own deadline
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	svc.Wait()
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Zero(t, sender.count())
}

func TestNotify_CloseDrainsThenDrops(t *testing.T) {
	f := newFixture(t)
	sender := &stubSender{delay: 20 * time.Millisecond}
	svc := NewNotificationService(repository.NewNotificationRepository(f.db), f.accounts, sender, time.Second, f.log)
	acc := f.account(t, 505)

	svc.Notify(context.Background(), acc.ID, "before close", model.NotifyMessages)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Notify(context.Background(), acc.ID, "racing close", model.NotifyMessages)
		}()
	}
	svc.Close()
	wg.Wait()
	svc.Wait()
	delivered := sender.count()
	assert.GreaterOrEqual(t, delivered, 1, "queued deliveries finish before Close returns")

	svc.Notify(context.Background(), acc.ID, "after close", model.NotifyMessages)
	svc.Wait()
	assert.Equal(t, delivered, sender.count())
}
