package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swiftretail/pos-backend/pkg/db/models"
)

// SaleRow is one sale in the date-ranged listing, with the customer name
// resolved.
type SaleRow struct {
	ID            uuid.UUID       `gorm:"column:id" json:"id"`
	ReceiptNumber string          `gorm:"column:receipt_number" json:"receipt_number"`
	CustomerName  *string         `gorm:"column:customer_name" json:"customer_name,omitempty"`
	Subtotal      decimal.Decimal `gorm:"column:subtotal" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"column:discount" json:"discount"`
	Tax           decimal.Decimal `gorm:"column:tax" json:"tax"`
	Total         decimal.Decimal `gorm:"column:total" json:"total"`
	PaymentMethod string          `gorm:"column:payment_method" json:"payment_method"`
	CashierName   string          `gorm:"column:cashier_name" json:"cashier_name"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
}

// DailySummary aggregates one day of sales.
type DailySummary struct {
	Date      string          `json:"date"`
	SaleCount int64           `gorm:"column:sale_count" json:"sale_count"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal" json:"subtotal"`
	Discount  decimal.Decimal `gorm:"column:discount" json:"discount"`
	Tax       decimal.Decimal `gorm:"column:tax" json:"tax"`
	Total     decimal.Decimal `gorm:"column:total" json:"total"`
}

// TopProduct is one entry in the quantity-ranked product listing.
type TopProduct struct {
	ProductID   uuid.UUID       `gorm:"column:product_id" json:"product_id"`
	ProductName string          `gorm:"column:product_name" json:"product_name"`
	TotalQty    int64           `gorm:"column:total_qty" json:"total_qty"`
	Revenue     decimal.Decimal `gorm:"column:revenue" json:"revenue"`
}

// PurchaseRow is one sale in a customer's history.
type PurchaseRow struct {
	SaleID        uuid.UUID       `gorm:"column:id" json:"sale_id"`
	ReceiptNumber string          `gorm:"column:receipt_number" json:"receipt_number"`
	Total         decimal.Decimal `gorm:"column:total" json:"total"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
}

// Repository runs the read-only reporting queries. Aggregations happen in SQL;
// nothing here writes.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) SalesBetween(ctx context.Context, from, to time.Time, limit int) ([]SaleRow, error) {
	var rows []SaleRow
	err := r.db.WithContext(ctx).
		Table("sales").
		Select("sales.id, sales.receipt_number, customers.name AS customer_name, sales.subtotal, sales.discount, sales.tax, sales.total, sales.payment_method, sales.cashier_name, sales.created_at").
		Joins("LEFT JOIN customers ON customers.id = sales.customer_id").
		Where("sales.created_at >= ? AND sales.created_at < ?", from, to).
		Order("sales.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) SummaryBetween(ctx context.Context, from, to time.Time) (*DailySummary, error) {
	var summary DailySummary
	err := r.db.WithContext(ctx).
		Table("sales").
		Select("COUNT(*) AS sale_count, COALESCE(SUM(subtotal), 0) AS subtotal, COALESCE(SUM(discount), 0) AS discount, COALESCE(SUM(tax), 0) AS tax, COALESCE(SUM(total), 0) AS total").
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *Repository) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	var rows []TopProduct
	err := r.db.WithContext(ctx).
		Table("sale_items").
		Select("product_id, product_name, SUM(quantity) AS total_qty, COALESCE(SUM(total_price), 0) AS revenue").
		Group("product_id, product_name").
		Order("total_qty DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) LowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("stock <= min_stock AND is_active = ?", true).
		Order("stock ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Repository) CustomerPurchases(ctx context.Context, customerID uuid.UUID, limit int) ([]PurchaseRow, error) {
	var rows []PurchaseRow
	err := r.db.WithContext(ctx).
		Table("sales").
		Select("id, receipt_number, total, created_at").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
