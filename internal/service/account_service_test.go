package service

import (
	"context"
	"testing"

	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBan(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.accounts, f.log)
	ctx := context.Background()
	mod := f.account(t, 1, admin)
	user := f.account(t, 2)
	other := f.account(t, 3)

	_, err := svc.Ban(ctx, other, user.ID, "nope")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Ban(ctx, mod, mod.ID, "oops")
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = svc.Ban(ctx, mod, 9999, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Ban(ctx, mod, user.ID, " scam listings ")
	require.NoError(t, err)
	assert.True(t, got.Banned)
	assert.Equal(t, "scam listings", got.BanReason)

	stored, err := f.accounts.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.Banned)
	assert.NotNil(t, stored.BannedAt)

	got, err = svc.Unban(ctx, mod, user.ID)
	require.NoError(t, err)
	assert.False(t, got.Banned)
	stored, err = f.accounts.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.Banned)
	assert.Nil(t, stored.BannedAt)
}

func TestUpdatePreferences(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.accounts, f.log)
	ctx := context.Background()
	acc := f.account(t, 1)

	got, err := svc.UpdatePreferences(ctx, acc, map[string]bool{model.NotifyOffers: false})
	require.NoError(t, err)
	assert.False(t, got.NotificationEnabled(model.NotifyOffers))

	got, err = svc.UpdatePreferences(ctx, acc, map[string]bool{model.NotifyMessages: false})
	require.NoError(t, err)
	assert.False(t, got.NotificationEnabled(model.NotifyOffers), "earlier toggles are kept")
	assert.False(t, got.NotificationEnabled(model.NotifyMessages))

	_, err = svc.UpdatePreferences(ctx, acc, map[string]bool{"marketing": true})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestListingService_OwnershipAndAdminOverride(t *testing.T) {
	f := newFixture(t)
	svc := NewListingService(f.listings, f.log)
	ctx := context.Background()
	owner := f.account(t, 1)
	stranger := f.account(t, 2)
	mod := f.account(t, 3, admin)

	l, err := svc.Create(ctx, owner, ListingInput{Title: " Lamp ", Description: "Desk lamp", Price: decimal.RequireFromString("12.345")})
	require.NoError(t, err)
	assert.Equal(t, "Lamp", l.Title)
	assert.True(t, l.Price.Equal(decimal.RequireFromString("12.35")))

	edit := ListingInput{Title: "Lamp v2", Description: "Desk lamp", Price: decimal.NewFromInt(10)}
	_, err = svc.Update(ctx, stranger, l.ID, edit)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, owner, l.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, "Lamp v2", updated.Title)

	_, err = svc.Update(ctx, mod, l.ID, ListingInput{Title: "Moderated", Description: "Desk lamp", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, owner, l.ID, ListingInput{Title: "", Description: "x"})
	assert.ErrorIs(t, err, ErrBadRequest)

	assert.ErrorIs(t, svc.Delete(ctx, stranger, l.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, mod, l.ID))
	_, err = svc.Get(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, f.account(t, 4, banned), ListingInput{Title: "x", Description: "y"})
	assert.ErrorIs(t, err, ErrAccountBanned)
}
