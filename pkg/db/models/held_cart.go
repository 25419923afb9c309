package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HeldCart parks a serialized line list for later continuation. Resume reads
// then deletes the row in one transaction, so each hold is consumed at most
// once.
type HeldCart struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CartData   string     `gorm:"column:cart_data;not null" json:"-"`
	CustomerID *uuid.UUID `gorm:"column:customer_id;type:uuid" json:"customer_id,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (hc *HeldCart) BeforeCreate(*gorm.DB) error {
	if hc.ID == uuid.Nil {
		hc.ID = uuid.New()
	}
	return nil
}
