package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swiftretail/pos-backend/pkg/db/models"
	pkgerrors "github.com/swiftretail/pos-backend/pkg/errors"
	"github.com/swiftretail/pos-backend/pkg/logger"
	"github.com/swiftretail/pos-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// HeldCartSummary is the list view of a parked cart.
type HeldCartSummary struct {
	ID           uuid.UUID  `json:"id"`
	ItemCount    int        `json:"item_count"`
	CustomerID   *uuid.UUID `json:"customer_id,omitempty"`
	CustomerName *string    `json:"customer_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ResumedCart is a consumed hold handed back to the operator.
type ResumedCart struct {
	Lines      []Line     `json:"lines"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
}

// Service covers cart pricing previews and the hold/resume flow.
type Service interface {
	Quote(ctx context.Context, lines []Line, discountSpec string, taxPercent decimal.Decimal) (money.Totals, error)
	Hold(ctx context.Context, lines []Line, customerID *uuid.UUID) (*models.HeldCart, error)
	ListHeld(ctx context.Context) ([]HeldCartSummary, error)
	Resume(ctx context.Context, id uuid.UUID) (*ResumedCart, error)
}

type service struct {
	tx   txRunner
	repo *Repository
	logg *logger.Logger
}

func NewService(tx txRunner, repo *Repository, logg *logger.Logger) Service {
	return &service{tx: tx, repo: repo, logg: logg}
}

// Quote prices the lines without touching stock or writing anything. An
// unparseable discount spec falls back to zero and is flagged on the result.
func (s *service) Quote(ctx context.Context, lines []Line, discountSpec string, taxPercent decimal.Decimal) (money.Totals, error) {
	for _, line := range lines {
		if line.Quantity < 1 {
			return money.Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1")
		}
		if line.UnitPrice.IsNegative() {
			return money.Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "line unit price cannot be negative")
		}
	}

	totals := money.Quote(MoneyLines(lines), discountSpec, taxPercent)
	if totals.DiscountIgnored {
		s.logg.Warn(s.logg.WithField(ctx, "discount_spec", discountSpec), "unparseable discount spec ignored")
	}
	return totals, nil
}

// Hold parks a non-empty cart for later continuation.
func (s *service) Hold(ctx context.Context, lines []Line, customerID *uuid.UUID) (*models.HeldCart, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot hold an empty cart")
	}

	c := Cart{Lines: lines}
	data, err := c.Serialize()
	if err != nil {
		return nil, err
	}

	held := &models.HeldCart{CartData: data, CustomerID: customerID}
	if err := s.repo.CreateHeldCart(ctx, held); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist held cart")
	}

	s.logg.Info(s.logg.WithField(ctx, "held_cart_id", held.ID.String()), "cart held")
	return held, nil
}

// ListHeld returns all parked carts, newest first.
func (s *service) ListHeld(ctx context.Context) ([]HeldCartSummary, error) {
	rows, err := s.repo.ListHeldCarts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list held carts")
	}

	summaries := make([]HeldCartSummary, 0, len(rows))
	for _, row := range rows {
		lines, err := Deserialize(row.CartData)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, HeldCartSummary{
			ID:           row.ID,
			ItemCount:    len(lines),
			CustomerID:   row.CustomerID,
			CustomerName: row.CustomerName,
			CreatedAt:    row.CreatedAt,
		})
	}
	return summaries, nil
}

// Resume reads and deletes the hold in one transaction. A second resume of the
// same id observes the deletion and reports not found.
func (s *service) Resume(ctx context.Context, id uuid.UUID) (*ResumedCart, error) {
	var resumed *ResumedCart

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		held, err := repo.FindHeldCart(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "held cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load held cart")
		}

		lines, err := Deserialize(held.CartData)
		if err != nil {
			return err
		}

		if err := repo.DeleteHeldCart(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete held cart")
		}

		resumed = &ResumedCart{Lines: lines, CustomerID: held.CustomerID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "held_cart_id", id.String()), "cart resumed")
	return resumed, nil
}
