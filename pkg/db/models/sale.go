package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is the append-only record of a committed cart. Rows are never updated
// or deleted once written.
type Sale struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ReceiptNumber string          `gorm:"column:receipt_number;not null;uniqueIndex:idx_sales_receipt_number" json:"receipt_number"`
	CustomerID    *uuid.UUID      `gorm:"column:customer_id;type:uuid" json:"customer_id,omitempty"`
	Subtotal      decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0" json:"discount"`
	Tax           decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null" json:"tax"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	Paid          decimal.Decimal `gorm:"column:paid;type:numeric(12,2);not null" json:"paid"`
	ChangeAmount  decimal.Decimal `gorm:"column:change_amount;type:numeric(12,2);not null" json:"change_amount"`
	PaymentMethod string          `gorm:"column:payment_method;not null" json:"payment_method"`
	CashierName   string          `gorm:"column:cashier_name;not null" json:"cashier_name"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime;index:idx_sales_created_at" json:"created_at"`
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
