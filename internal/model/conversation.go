package model

import "time"

type Conversation struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID       uint64    `gorm:"column:listing_id;not null;uniqueIndex:uk_conversations_triple" json:"listingId"`
	BuyerAccountID  uint64    `gorm:"column:buyer_account_id;not null;uniqueIndex:uk_conversations_triple;index" json:"buyerAccountId"`
	SellerAccountID uint64    `gorm:"column:seller_account_id;not null;uniqueIndex:uk_conversations_triple;index" json:"sellerAccountId"`
	DeletedByBuyer  bool      `gorm:"column:deleted_by_buyer;not null;default:false" json:"-"`
	DeletedBySeller bool      `gorm:"column:deleted_by_seller;not null;default:false" json:"-"`
	LastActivityAt  time.Time `gorm:"column:last_activity_at;not null;index" json:"lastActivityAt"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) IsParticipant(accountID uint64) bool {
	return accountID != 0 && (c.BuyerAccountID == accountID || c.SellerAccountID == accountID)
}

// Counterpart returns the other participant, or 0 if accountID is not a participant.
func (c *Conversation) Counterpart(accountID uint64) uint64 {
	switch accountID {
	case c.BuyerAccountID:
		return c.SellerAccountID
	case c.SellerAccountID:
		return c.BuyerAccountID
	}
	return 0
}
