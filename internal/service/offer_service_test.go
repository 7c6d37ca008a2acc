package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake_OnePendingOfferPerBuyer(t *testing.T) {
	f := newFixture(t)
	svc := f.offerService()
	ctx := context.Background()
	owner := f.account(t, 1)
	buyer := f.account(t, 2)
	l := f.listing(t, owner)

	first, err := svc.Make(ctx, buyer, l.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusPending, first.Status)

	_, err = svc.Make(ctx, buyer, l.ID, decimal.NewFromInt(120))
	assert.ErrorIs(t, err, ErrDuplicatePendingOffer)

	_, err = svc.Transition(ctx, owner, first.ID, model.OfferStatusRejected)
	require.NoError(t, err)

	third, err := svc.Make(ctx, buyer, l.ID, decimal.NewFromInt(120))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestMake_Validation(t *testing.T) {
	f := newFixture(t)
	svc := f.offerService()
	ctx := context.Background()
	owner := f.account(t, 1)
	l := f.listing(t, owner)

	_, err := svc.Make(ctx, owner, l.ID, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrSelfOffer)

	buyer := f.account(t, 2)
	_, err = svc.Make(ctx, buyer, l.ID, decimal.Zero)
	assert.ErrorIs(t, err, ErrBadRequest)
	_, err = svc.Make(ctx, buyer, 999, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Make(ctx, f.account(t, 3, banned), l.ID, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrAccountBanned)
}

func TestMake_NotifiesOwner(t *testing.T) {
	f := newFixture(t)
	svc := f.offerService()
	owner := f.account(t, 1)
	buyer := f.account(t, 2)
	l := f.listing(t, owner)

	_, err := svc.Make(context.Background(), buyer, l.ID, decimal.RequireFromString("99.5"))
	require.NoError(t, err)

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, owner.ID, sent[0].AccountID)
	assert.Equal(t, model.NotifyOffers, sent[0].Category)
	assert.Contains(t, sent[0].Message, "99.50")
}

func TestMake_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	svc := f.offerService()
	owner := f.account(t, 1)
	buyer := f.account(t, 2)
	l := f.listing(t, owner)

	const workers = 6
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Make(context.Background(), buyer, l.ID, decimal.NewFromInt(int64(100+i)))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicatePendingOffer)
	}
	assert.Equal(t, 1, ok)
}

func TestTransition(t *testing.T) {
	f := newFixture(t)
	svc := f.offerService()
	ctx := context.Background()
	owner := f.account(t, 1)
	buyer := f.account(t, 2, func(a *model.Account) { a.Handle = "buyer_handle" })
	stranger := f.account(t, 3)
	l := f.listing(t, owner)

	offer, err := svc.Make(ctx, buyer, l.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = svc.Transition(ctx, stranger, offer.ID, model.OfferStatusAccepted)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Transition(ctx, buyer, offer.ID, model.OfferStatusAccepted)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Transition(ctx, owner, offer.ID, model.OfferStatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	res, err := svc.Transition(ctx, owner, offer.ID, model.OfferStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusAccepted, res.Offer.Status)
	require.NotNil(t, res.Contact)
	assert.Equal(t, "buyer_handle", res.Contact.Handle)
	assert.Equal(t, buyer.ExternalID, res.Contact.ExternalID)

	_, err = svc.Transition(ctx, owner, offer.ID, model.OfferStatusRejected)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Transition(ctx, owner, 12345, model.OfferStatusRejected)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := f.offers.FindByID(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusAccepted, stored.Status)
}

func TestTransition_RejectHasNoContact(t *testing.T) {
	f := newFixture(t)
	svc := f.offerService()
	ctx := context.Background()
	owner := f.account(t, 1)
	buyer := f.account(t, 2)
	offer, err := svc.Make(ctx, buyer, f.listing(t, owner).ID, decimal.NewFromInt(5))
	require.NoError(t, err)

	res, err := svc.Transition(ctx, owner, offer.ID, model.OfferStatusRejected)
	require.NoError(t, err)
	assert.Nil(t, res.Contact)

	sent := f.notifier.all()
	require.Len(t, sent, 2)
	assert.Equal(t, buyer.ID, sent[1].AccountID)
	assert.Contains(t, sent[1].Message, "rejected")
}

func TestTransition_AdminOverrideAndBannedOwner(t *testing.T) {
	f := newFixture(t)
	svc := f.offerService()
	ctx := context.Background()
	owner := f.account(t, 1)
	buyer := f.account(t, 2)
	moderator := f.account(t, 3, admin)
	l := f.listing(t, owner)

	o1, err := svc.Make(ctx, buyer, l.ID, decimal.NewFromInt(5))
	require.NoError(t, err)
	_, err = svc.Transition(ctx, moderator, o1.ID, model.OfferStatusRejected)
	require.NoError(t, err)

	o2, err := svc.Make(ctx, buyer, l.ID, decimal.NewFromInt(6))
	require.NoError(t, err)
	owner.Banned = true
	_, err = svc.Transition(ctx, owner, o2.ID, model.OfferStatusAccepted)
	assert.ErrorIs(t, err, ErrAccountBanned)
}

func TestTransition_ConcurrentOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	svc := f.offerService()
	owner := f.account(t, 1)
	buyer := f.account(t, 2)
	offer, err := svc.Make(context.Background(), buyer, f.listing(t, owner).ID, decimal.NewFromInt(5))
	require.NoError(t, err)

	statuses := []model.OfferStatus{model.OfferStatusAccepted, model.OfferStatusRejected, model.OfferStatusAccepted, model.OfferStatusRejected}
	errs := make([]error, len(statuses))
	var wg sync.WaitGroup
	for i, st := range statuses {
		wg.Add(1)
		go func(i int, st model.OfferStatus) {
			defer wg.Done()
			_, errs[i] = svc.Transition(context.Background(), owner, offer.ID, st)
		}(i, st)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
	assert.Equal(t, 1, ok)
}

func TestListForListing(t *testing.T) {
	f := newFixture(t)
	svc := f.offerService()
	ctx := context.Background()
	owner := f.account(t, 1)
	buyer := f.account(t, 2)
	l := f.listing(t, owner)
	_, err := svc.Make(ctx, buyer, l.ID, decimal.NewFromInt(5))
	require.NoError(t, err)

	list, err := svc.ListForListing(ctx, owner, l.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListForListing(ctx, buyer, l.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	mine, err := svc.ListMine(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestTransition_AfterListingDeleted(t *testing.T) {
	f := newFixture(t)
	svc := f.offerService()
	ctx := context.Background()
	owner := f.account(t, 1)
	buyer := f.account(t, 2)
	stranger := f.account(t, 3)
	l := f.listing(t, owner)
	offer, err := svc.Make(ctx, buyer, l.ID, decimal.NewFromInt(40))
	require.NoError(t, err)

	require.NoError(t, f.listings.SoftDelete(ctx, l.ID, time.Now()))

	_, err = svc.Make(ctx, f.account(t, 4), l.ID, decimal.NewFromInt(41))
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.ListForListing(ctx, owner, l.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.Transition(ctx, stranger, offer.ID, model.OfferStatusRejected)
	assert.ErrorIs(t, err, ErrForbidden)

	res, err := svc.Transition(ctx, owner, offer.ID, model.OfferStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusRejected, res.Offer.Status)

	stored, err := f.offers.FindByID(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusRejected, stored.Status)
	assert.Nil(t, stored.PendingSlot)
}
