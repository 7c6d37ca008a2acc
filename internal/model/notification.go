package model

import "time"

type Notification struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement"`
	AccountID uint64     `gorm:"column:account_id;index;not null"`
	Category  string     `gorm:"column:category;size:64;not null"`
	Body      string     `gorm:"column:body;type:text"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
