package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexFame/bazaar-sub001/internal/authz"
	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContactHandoff is what the seller learns about the buyer once an offer is accepted.
// The service only exposes it; the caller decides how to present it.
type ContactHandoff struct {
	AccountID   uint64
	ExternalID  int64
	DisplayName string
	Handle      string
}

type OfferTransition struct {
	Offer   *model.Offer
	Contact *ContactHandoff
}

type OfferService interface {
	Make(ctx context.Context, actor *model.Account, listingID uint64, price decimal.Decimal) (*model.Offer, error)
	Transition(ctx context.Context, actor *model.Account, offerID uint64, status model.OfferStatus) (*OfferTransition, error)
	ListForListing(ctx context.Context, actor *model.Account, listingID uint64) ([]model.Offer, error)
	ListMine(ctx context.Context, actor *model.Account) ([]model.Offer, error)
}

type offerService struct {
	offerRepo   repository.OfferRepository
	listingRepo repository.ListingRepository
	accountRepo repository.AccountRepository
	notifier    Notifier
	log         *zap.Logger
}

func NewOfferService(offerRepo repository.OfferRepository, listingRepo repository.ListingRepository, accountRepo repository.AccountRepository, notifier Notifier, log *zap.Logger) OfferService {
	return &offerService{offerRepo: offerRepo, listingRepo: listingRepo, accountRepo: accountRepo, notifier: notifier, log: log}
}

func (s *offerService) listing(ctx context.Context, id uint64) (*model.Listing, error) {
	l, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *offerService) Make(ctx context.Context, actor *model.Account, listingID uint64, price decimal.Decimal) (*model.Offer, error) {
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrBadRequest)
	}
	l, err := s.listing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	act := actorOf(actor)
	if err := authorize(ctx, s.log, act, authz.MakeOffer, authz.ForListing(l.OwnerAccountID)); err != nil {
		return nil, err
	}
	if l.OwnerAccountID == act.ID {
		return nil, ErrSelfOffer
	}
	o := &model.Offer{ListingID: l.ID, BuyerAccountID: act.ID, Price: price.Round(2)}
	if err := s.offerRepo.Create(ctx, o); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicatePendingOffer
		}
		return nil, err
	}
	s.notifier.Notify(ctx, l.OwnerAccountID,
		fmt.Sprintf("New offer of %s for %q", o.Price.StringFixed(2), l.Title), model.NotifyOffers)
	return o, nil
}

func (s *offerService) Transition(ctx context.Context, actor *model.Account, offerID uint64, status model.OfferStatus) (*OfferTransition, error) {
	if !status.Terminal() {
		return nil, ErrInvalidTransition
	}
	o, err := s.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	l, err := s.listingRepo.FindAnyByID(ctx, o.ListingID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	var ownerID uint64
	if l != nil {
		ownerID = l.OwnerAccountID
	}
	if err := authorize(ctx, s.log, actorOf(actor), authz.TransitionOffer, authz.ForListing(ownerID)); err != nil {
		return nil, err
	}
	if o.Status != model.OfferStatusPending {
		return nil, ErrInvalidTransition
	}
	n, err := s.offerRepo.TransitionIfPending(ctx, o.ID, status)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Another request settled the offer between our read and the update.
		return nil, ErrInvalidTransition
	}
	o.Status = status
	o.PendingSlot = nil

	out := &OfferTransition{Offer: o}
	if status == model.OfferStatusAccepted {
		buyer, err := s.accountRepo.FindByID(ctx, o.BuyerAccountID)
		if err != nil {
			s.log.Warn("load buyer for contact handoff", zap.Uint64("offer", o.ID), zap.Error(err))
		} else {
			out.Contact = &ContactHandoff{
				AccountID:   buyer.ID,
				ExternalID:  buyer.ExternalID,
				DisplayName: buyer.DisplayName,
				Handle:      buyer.Handle,
			}
		}
	}
	s.notifier.Notify(ctx, o.BuyerAccountID, offerOutcomeText(o, l), model.NotifyOffers)
	return out, nil
}

func offerOutcomeText(o *model.Offer, l *model.Listing) string {
	title := "a listing"
	if l != nil {
		title = fmt.Sprintf("%q", l.Title)
	}
	return fmt.Sprintf("Your offer of %s for %s was %s", o.Price.StringFixed(2), title, o.Status)
}

func (s *offerService) ListForListing(ctx context.Context, actor *model.Account, listingID uint64) ([]model.Offer, error) {
	// Deleted listings still list their offers so the owner can settle pending ones.
	l, err := s.listingRepo.FindAnyByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := authorize(ctx, s.log, actorOf(actor), authz.ViewListingOffers, authz.ForListing(l.OwnerAccountID)); err != nil {
		return nil, err
	}
	return s.offerRepo.ListByListing(ctx, l.ID)
}

func (s *offerService) ListMine(ctx context.Context, actor *model.Account) ([]model.Offer, error) {
	if actor == nil || actor.ID == 0 {
		return nil, ErrForbidden
	}
	return s.offerRepo.ListByBuyer(ctx, actor.ID)
}
