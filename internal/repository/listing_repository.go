package repository

import (
	"context"
	"time"

	"github.com/AlexFame/bazaar-sub001/internal/model"
	"gorm.io/gorm"
)

type ListingRepository interface {
	Create(ctx context.Context, l *model.Listing) error
	FindByID(ctx context.Context, id uint64) (*model.Listing, error)
	// FindAnyByID includes soft-deleted listings; ownership survives deletion.
	FindAnyByID(ctx context.Context, id uint64) (*model.Listing, error)
	Update(ctx context.Context, l *model.Listing) error
	SoftDelete(ctx context.Context, id uint64, at time.Time) error
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, l *model.Listing) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// FindByID ignores soft-deleted listings.
func (r *listingRepository) FindByID(ctx context.Context, id uint64) (*model.Listing, error) {
	var l model.Listing
	if err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *listingRepository) FindAnyByID(ctx context.Context, id uint64) (*model.Listing, error) {
	var l model.Listing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *listingRepository) Update(ctx context.Context, l *model.Listing) error {
	return r.db.WithContext(ctx).
		Model(l).
		Select("Title", "Description", "Price").
		Updates(l).Error
}

func (r *listingRepository) SoftDelete(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at).Error
}
