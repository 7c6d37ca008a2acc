package model

import "time"

type Message struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID  uint64    `gorm:"column:conversation_id;not null;index:idx_messages_conv_read" json:"conversationId"`
	SenderAccountID uint64    `gorm:"column:sender_account_id;not null;index" json:"senderAccountId"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	Read            bool      `gorm:"column:is_read;not null;default:false;index:idx_messages_conv_read" json:"read"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}
