package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is owned by the catalogue side of the app; only the owner matters for authorization.
type Listing struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerAccountID uint64          `gorm:"column:owner_account_id;not null;index" json:"ownerAccountId"`
	Title          string          `gorm:"size:120;not null" json:"title"`
	Description    string          `gorm:"type:text;not null" json:"description"`
	Price          decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	DeletedAt      *time.Time      `gorm:"column:deleted_at;index" json:"-"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Listing) TableName() string {
	return "listings"
}
