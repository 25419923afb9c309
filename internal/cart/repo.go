package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftretail/pos-backend/pkg/db/models"
)

// HeldCartRow is a held cart joined with the optional customer name for
// listing.
type HeldCartRow struct {
	models.HeldCart
	CustomerName *string `gorm:"column:customer_name"`
}

// Repository persists held carts.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) CreateHeldCart(ctx context.Context, held *models.HeldCart) error {
	return r.db.WithContext(ctx).Create(held).Error
}

func (r *Repository) ListHeldCarts(ctx context.Context) ([]HeldCartRow, error) {
	var rows []HeldCartRow
	err := r.db.WithContext(ctx).
		Table("held_carts").
		Select("held_carts.*, customers.name AS customer_name").
		Joins("LEFT JOIN customers ON customers.id = held_carts.customer_id").
		Order("held_carts.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindHeldCart(ctx context.Context, id uuid.UUID) (*models.HeldCart, error) {
	var held models.HeldCart
	if err := r.db.WithContext(ctx).First(&held, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &held, nil
}

func (r *Repository) DeleteHeldCart(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.HeldCart{}, "id = ?", id).Error
}
