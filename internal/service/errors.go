package service

import (
	"context"
	"errors"

	"github.com/AlexFame/bazaar-sub001/internal/authz"
	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/reqctx"
	"go.uber.org/zap"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")

	// ErrAccountBanned is shared with the guard so callers can match either.
	ErrAccountBanned = authz.ErrAccountBanned

	ErrSelfConversation      = errors.New("self_conversation")
	ErrSelfOffer             = errors.New("self_offer")
	ErrDuplicatePendingOffer = errors.New("duplicate_pending_offer")
	ErrInvalidTransition     = errors.New("invalid_transition")
)

func actorOf(acc *model.Account) authz.Actor {
	if acc == nil {
		return authz.Actor{}
	}
	return authz.Actor{ID: acc.ID, Admin: acc.IsAdmin, Banned: acc.Banned}
}

// authorize runs the guard and turns a deny into a service error. Denials are
// logged with actor, action and resource for audit.
func authorize(ctx context.Context, log *zap.Logger, actor authz.Actor, action authz.Action, res authz.Resource) error {
	err := authz.Authorize(actor, action, res).Err()
	if err == nil {
		return nil
	}
	log.With(reqctx.Fields(ctx)...).Warn("authorization denied",
		zap.Uint64("actor", actor.ID),
		zap.Bool("admin", actor.Admin),
		zap.String("action", action.String()),
		zap.Uint64("listing_owner", res.ListingOwnerID),
		zap.Uint64("buyer", res.BuyerID),
		zap.Uint64("seller", res.SellerID),
		zap.Error(err),
	)
	if errors.Is(err, authz.ErrAccountBanned) {
		return ErrAccountBanned
	}
	return ErrForbidden
}
