package models

import "time"

// CartSnapshot stores the serialized line items of one session's cart.
type CartSnapshot struct {
	SessionID string    `gorm:"column:session_id;type:text;primaryKey"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	ItemCount int       `gorm:"column:item_count;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (CartSnapshot) TableName() string { return "cart_snapshots" }
