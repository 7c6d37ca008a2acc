package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
)

func (s OfferStatus) Terminal() bool {
	return s == OfferStatusAccepted || s == OfferStatusRejected
}

type Offer struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID      uint64          `gorm:"column:listing_id;not null;uniqueIndex:uk_offers_pending;index" json:"listingId"`
	BuyerAccountID uint64          `gorm:"column:buyer_account_id;not null;uniqueIndex:uk_offers_pending;index" json:"buyerAccountId"`
	Price          decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	Status         OfferStatus     `gorm:"column:status;size:16;not null" json:"status"`
	// PendingSlot is 1 while pending and NULL afterwards. NULLs never collide in a
	// unique index, so uk_offers_pending allows one pending offer per (listing, buyer)
	// and any number of terminal ones.
	PendingSlot *uint8    `gorm:"column:pending_slot;uniqueIndex:uk_offers_pending" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Offer) TableName() string {
	return "offers"
}

func PendingSlot() *uint8 {
	v := uint8(1)
	return &v
}
