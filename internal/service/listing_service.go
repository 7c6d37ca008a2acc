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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ListingInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
}

func (in *ListingInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || len(in.Title) > 120 {
		return fmt.Errorf("%w: invalid title", ErrBadRequest)
	}
	if in.Description == "" {
		return fmt.Errorf("%w: invalid description", ErrBadRequest)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrBadRequest)
	}
	in.Price = in.Price.Round(2)
	return nil
}

type ListingService interface {
	Create(ctx context.Context, actor *model.Account, in ListingInput) (*model.Listing, error)
	Get(ctx context.Context, id uint64) (*model.Listing, error)
	Update(ctx context.Context, actor *model.Account, id uint64, in ListingInput) (*model.Listing, error)
	Delete(ctx context.Context, actor *model.Account, id uint64) error
}

type listingService struct {
	repo repository.ListingRepository
	log  *zap.Logger
}

func NewListingService(repo repository.ListingRepository, log *zap.Logger) ListingService {
	return &listingService{repo: repo, log: log}
}

func (s *listingService) Create(ctx context.Context, actor *model.Account, in ListingInput) (*model.Listing, error) {
	if actor == nil || actor.ID == 0 {
		return nil, ErrForbidden
	}
	if actor.Banned {
		return nil, ErrAccountBanned
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	l := &model.Listing{
		OwnerAccountID: actor.ID,
		Title:          in.Title,
		Description:    in.Description,
		Price:          in.Price,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *listingService) Get(ctx context.Context, id uint64) (*model.Listing, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *listingService) Update(ctx context.Context, actor *model.Account, id uint64, in ListingInput) (*model.Listing, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, s.log, actorOf(actor), authz.EditListing, authz.ForListing(l.OwnerAccountID)); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	l.Title, l.Description, l.Price = in.Title, in.Description, in.Price
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *listingService) Delete(ctx context.Context, actor *model.Account, id uint64) error {
	l, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(ctx, s.log, actorOf(actor), authz.DeleteListing, authz.ForListing(l.OwnerAccountID)); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, l.ID, time.Now().UTC())
}
