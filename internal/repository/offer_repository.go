package repository

import (
	"context"

	"github.com/AlexFame/bazaar-sub001/internal/model"
	"gorm.io/gorm"
)

type OfferRepository interface {
	Create(ctx context.Context, o *model.Offer) error
	FindByID(ctx context.Context, id uint64) (*model.Offer, error)
	TransitionIfPending(ctx context.Context, id uint64, status model.OfferStatus) (int64, error)
	ListByListing(ctx context.Context, listingID uint64) ([]model.Offer, error)
	ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Offer, error)
}

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

// Create inserts a pending offer. If the buyer already has a pending offer on the
// listing, uk_offers_pending rejects it with gorm.ErrDuplicatedKey.
func (r *offerRepository) Create(ctx context.Context, o *model.Offer) error {
	o.Status = model.OfferStatusPending
	o.PendingSlot = model.PendingSlot()
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *offerRepository) FindByID(ctx context.Context, id uint64) (*model.Offer, error) {
	var o model.Offer
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// TransitionIfPending moves a pending offer to a terminal status. It returns the
// number of rows changed; 0 means the offer was no longer pending.
func (r *offerRepository) TransitionIfPending(ctx context.Context, id uint64, status model.OfferStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Offer{}).
		Where("id = ? AND status = ?", id, model.OfferStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"pending_slot": nil,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *offerRepository) ListByListing(ctx context.Context, listingID uint64) ([]model.Offer, error) {
	var list []model.Offer
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *offerRepository) ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Offer, error) {
	var list []model.Offer
	if err := r.db.WithContext(ctx).
		Where("buyer_account_id = ?", buyerID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
