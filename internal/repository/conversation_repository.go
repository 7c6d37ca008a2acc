package repository

import (
	"context"

	"github.com/AlexFame/bazaar-sub001/internal/model"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	Create(ctx context.Context, cv *model.Conversation) error
	FindByID(ctx context.Context, id uint64) (*model.Conversation, error)
	FindByTriple(ctx context.Context, listingID, buyerID, sellerID uint64) (*model.Conversation, error)
	ListByAccount(ctx context.Context, accountID uint64) ([]model.Conversation, error)
	AppendMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, convID uint64) ([]model.Message, error)
	MarkRead(ctx context.Context, convID, viewerID uint64) (int64, error)
	LastMessages(ctx context.Context, convIDs []uint64) (map[uint64]model.Message, error)
	UnreadCounts(ctx context.Context, convIDs []uint64, accountID uint64) (map[uint64]int64, error)
	HideFor(ctx context.Context, cv *model.Conversation, accountID uint64) error
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Create inserts a conversation. A second row for the same (listing, buyer, seller)
// fails with gorm.ErrDuplicatedKey.
func (r *conversationRepository) Create(ctx context.Context, cv *model.Conversation) error {
	if cv.LastActivityAt.IsZero() {
		cv.LastActivityAt = r.db.NowFunc()
	}
	return r.db.WithContext(ctx).Create(cv).Error
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*model.Conversation, error) {
	var cv model.Conversation
	if err := r.db.WithContext(ctx).First(&cv, id).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByTriple(ctx context.Context, listingID, buyerID, sellerID uint64) (*model.Conversation, error) {
	var cv model.Conversation
	if err := r.db.WithContext(ctx).
		Where("listing_id = ? AND buyer_account_id = ? AND seller_account_id = ?", listingID, buyerID, sellerID).
		First(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) ListByAccount(ctx context.Context, accountID uint64) ([]model.Conversation, error) {
	var list []model.Conversation
	if err := r.db.WithContext(ctx).
		Where("(buyer_account_id = ? AND deleted_by_buyer = ?) OR (seller_account_id = ? AND deleted_by_seller = ?)",
			accountID, false, accountID, false).
		Order("last_activity_at DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// AppendMessage stores msg and bumps the conversation's activity timestamp in
// one transaction, so readers never see the message without the new ordering key.
// A hidden conversation becomes visible again for both sides.
func (r *conversationRepository) AppendMessage(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Updates(map[string]interface{}{
				"last_activity_at":  msg.CreatedAt,
				"deleted_by_buyer":  false,
				"deleted_by_seller": false,
			}).Error
	})
}

func (r *conversationRepository) ListMessages(ctx context.Context, convID uint64) ([]model.Message, error) {
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkRead flips every unread message written by the viewer's counterpart.
func (r *conversationRepository) MarkRead(ctx context.Context, convID, viewerID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ? AND sender_account_id <> ? AND is_read = ?", convID, viewerID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *conversationRepository) LastMessages(ctx context.Context, convIDs []uint64) (map[uint64]model.Message, error) {
	out := make(map[uint64]model.Message, len(convIDs))
	if len(convIDs) == 0 {
		return out, nil
	}
	latest := r.db.Model(&model.Message{}).
		Select("MAX(id)").
		Where("conversation_id IN ?", convIDs).
		Group("conversation_id")
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", latest).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	for _, m := range msgs {
		out[m.ConversationID] = m
	}
	return out, nil
}

func (r *conversationRepository) UnreadCounts(ctx context.Context, convIDs []uint64, accountID uint64) (map[uint64]int64, error) {
	out := make(map[uint64]int64, len(convIDs))
	if len(convIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ConversationID uint64
		Unread         int64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Select("conversation_id, COUNT(*) AS unread").
		Where("conversation_id IN ? AND sender_account_id <> ? AND is_read = ?", convIDs, accountID, false).
		Group("conversation_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ConversationID] = row.Unread
	}
	return out, nil
}

// HideFor sets the soft-delete flag on the account's side of the conversation only.
func (r *conversationRepository) HideFor(ctx context.Context, cv *model.Conversation, accountID uint64) error {
	column := "deleted_by_buyer"
	if accountID == cv.SellerAccountID {
		column = "deleted_by_seller"
	}
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", cv.ID).
		Update(column, true).Error
}
