package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog listing. Stock never goes negative: the sale engine
// decrements it behind a guarded update, and rows are soft-deleted via
// is_active once referenced by a sale.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	CategoryID  *uuid.UUID      `gorm:"column:category_id;type:uuid;index:idx_products_category_id" json:"category_id,omitempty"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Cost        decimal.Decimal `gorm:"column:cost;type:numeric(12,2);not null;default:0" json:"cost"`
	Barcode     *string         `gorm:"column:barcode;uniqueIndex:idx_products_barcode" json:"barcode,omitempty"`
	Stock       int             `gorm:"column:stock;not null;default:0" json:"stock"`
	Description *string         `gorm:"column:description" json:"description,omitempty"`
	MinStock    int             `gorm:"column:min_stock;not null;default:0" json:"min_stock"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
