package service

import (
	"context"
	"sync"
	"testing"

	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/repository"
	"github.com/AlexFame/bazaar-sub001/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sentNotification struct {
	AccountID uint64
	Message   string
	Category  string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Notify(_ context.Context, accountID uint64, message, category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{AccountID: accountID, Message: message, Category: category})
}

func (r *recordingNotifier) all() []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentNotification(nil), r.sent...)
}

type fixture struct {
	db       *gorm.DB
	accounts repository.AccountRepository
	listings repository.ListingRepository
	convs    repository.ConversationRepository
	offers   repository.OfferRepository
	notifier *recordingNotifier
	log      *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	return &fixture{
		db:       gdb,
		accounts: repository.NewAccountRepository(gdb),
		listings: repository.NewListingRepository(gdb),
		convs:    repository.NewConversationRepository(gdb),
		offers:   repository.NewOfferRepository(gdb),
		notifier: &recordingNotifier{},
		log:      zap.NewNop(),
	}
}

func (f *fixture) account(t *testing.T, externalID int64, mutate ...func(*model.Account)) *model.Account {
	t.Helper()
	acc := &model.Account{ExternalID: externalID, DisplayName: "user"}
	for _, m := range mutate {
		m(acc)
	}
	require.NoError(t, f.accounts.Create(context.Background(), acc))
	return acc
}

func (f *fixture) listing(t *testing.T, owner *model.Account) *model.Listing {
	t.Helper()
	l := &model.Listing{OwnerAccountID: owner.ID, Title: "Bike", Description: "Red bike", Price: decimal.NewFromInt(150)}
	require.NoError(t, f.listings.Create(context.Background(), l))
	return l
}

func (f *fixture) conversationService() ConversationService {
	return NewConversationService(f.convs, f.listings, f.notifier, f.log)
}

func (f *fixture) offerService() OfferService {
	return NewOfferService(f.offers, f.listings, f.accounts, f.notifier, f.log)
}

func banned(a *model.Account) { a.Banned = true; a.BanReason = "spam" }

func admin(a *model.Account) { a.IsAdmin = true }
