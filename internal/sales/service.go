// Package sales implements the commit transaction at the heart of the
// terminal. Everything a sale changes, the sale row, its item snapshots and
// the stock decrements, happens inside one transaction or not at all.
package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swiftretail/pos-backend/internal/cart"
	"github.com/swiftretail/pos-backend/pkg/db"
	"github.com/swiftretail/pos-backend/pkg/db/models"
	pkgerrors "github.com/swiftretail/pos-backend/pkg/errors"
	"github.com/swiftretail/pos-backend/pkg/logger"
	"github.com/swiftretail/pos-backend/pkg/metrics"
	"github.com/swiftretail/pos-backend/pkg/money"
	"github.com/swiftretail/pos-backend/pkg/receipt"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CommitInput is everything the engine needs to turn a cart into a sale. The
// engine never mutates the caller's cart; clearing it after success is the
// caller's business.
type CommitInput struct {
	Lines         []cart.Line
	DiscountSpec  string
	TaxPercent    decimal.Decimal
	Paid          decimal.Decimal
	PaymentMethod string
	CashierName   string
	CustomerID    *uuid.UUID
}

// Receipt is the outcome of a committed sale.
type Receipt struct {
	SaleID        uuid.UUID       `json:"sale_id"`
	ReceiptNumber string          `json:"receipt_number"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Paid          decimal.Decimal `json:"paid"`
	Change        decimal.Decimal `json:"change"`
}

// Service commits sales and reads them back for receipt rendering.
type Service interface {
	Commit(ctx context.Context, input CommitInput) (*Receipt, error)
	GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	GetSaleByReceipt(ctx context.Context, receiptNumber string) (*models.Sale, error)
}

type service struct {
	tx             txRunner
	repo           *Repository
	receipts       *receipt.Generator
	metrics        *metrics.SaleMetrics
	logg           *logger.Logger
	receiptRetries int
}

func NewService(
	tx txRunner,
	repo *Repository,
	receipts *receipt.Generator,
	saleMetrics *metrics.SaleMetrics,
	logg *logger.Logger,
	receiptRetries int,
) Service {
	if receiptRetries < 1 {
		receiptRetries = 3
	}
	return &service{
		tx:             tx,
		repo:           repo,
		receipts:       receipts,
		metrics:        saleMetrics,
		logg:           logg,
		receiptRetries: receiptRetries,
	}
}

// Commit runs the full sale transaction: price the lines, verify payment,
// allocate a receipt number, write the sale with its item snapshots and
// decrement stock, all inside one transaction. Receipt-number collisions roll
// back and retry with a fresh number up to the configured bound.
func (s *service) Commit(ctx context.Context, input CommitInput) (*Receipt, error) {
	if len(input.Lines) == 0 {
		s.metrics.IncRejected("empty_cart")
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot complete a sale with an empty cart")
	}
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			s.metrics.IncRejected("invalid_line")
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("line %q has quantity %d", line.Name, line.Quantity))
		}
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = "cash"
	}

	totals := money.Quote(cart.MoneyLines(input.Lines), input.DiscountSpec, input.TaxPercent)
	if totals.DiscountIgnored {
		s.logg.Warn(s.logg.WithField(ctx, "discount_spec", input.DiscountSpec),
			"unparseable discount spec ignored for commit")
	}

	if input.Paid.LessThan(totals.Total) {
		s.metrics.IncRejected("insufficient_payment")
		payErr := &InsufficientPaymentError{Required: totals.Total, Paid: input.Paid}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInsufficientPayment, payErr, payErr.Error()).
			WithDetails(map[string]any{
				"required": totals.Total.StringFixed(2),
				"paid":     input.Paid.StringFixed(2),
			})
	}
	change := money.Change(input.Paid, totals.Total)

	var out *Receipt
	for attempt := 0; attempt < s.receiptRetries; attempt++ {
		number := s.receipts.Next()

		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			committed, err := s.commitTx(ctx, tx, input, totals, change, number)
			if err != nil {
				return err
			}
			out = committed
			return nil
		})
		if err == nil {
			rctx := s.logg.WithReceipt(ctx, out.ReceiptNumber)
			s.logg.Info(s.logg.WithField(rctx, "sale_id", out.SaleID.String()), "sale committed")
			s.metrics.IncCommitted(input.PaymentMethod)
			s.metrics.ObserveSaleAmount(out.Total.InexactFloat64())
			return out, nil
		}

		// only receipt_number carries a unique constraint on this write path
		if db.IsUniqueViolation(err) {
			s.logg.Warn(s.logg.WithReceipt(ctx, number), "receipt number collision, retrying")
			continue
		}

		if coded := pkgerrors.As(err); coded != nil {
			s.metrics.IncRejected(rejectionReason(coded.Code()))
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commit sale")
	}

	s.metrics.IncRejected("receipt_exhausted")
	return nil, pkgerrors.New(pkgerrors.CodeReceiptGeneration,
		fmt.Sprintf("could not allocate a unique receipt number in %d attempts", s.receiptRetries))
}

func (s *service) commitTx(
	ctx context.Context,
	tx *gorm.DB,
	input CommitInput,
	totals money.Totals,
	change decimal.Decimal,
	receiptNumber string,
) (*Receipt, error) {
	repo := s.repo.WithTx(tx)

	// re-read persisted stock; the cart's soft check may be stale
	for _, line := range input.Lines {
		product, err := repo.FindProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("product %q is no longer available", line.Name))
			}
			return nil, err
		}
		if product.Stock < line.Quantity {
			return nil, insufficientStock(product.Name, product.Stock, line.Quantity)
		}
	}

	sale := &models.Sale{
		ReceiptNumber: receiptNumber,
		CustomerID:    input.CustomerID,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Paid:          input.Paid,
		ChangeAmount:  change,
		PaymentMethod: input.PaymentMethod,
		CashierName:   input.CashierName,
	}
	if err := repo.CreateSale(ctx, sale); err != nil {
		return nil, err
	}

	items := make([]models.SaleItem, len(input.Lines))
	for i, line := range input.Lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		items[i] = models.SaleItem{
			SaleID:      sale.ID,
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.UnitPrice.Mul(qty).Round(2),
		}
	}
	if err := repo.CreateSaleItems(ctx, items); err != nil {
		return nil, err
	}

	for _, line := range input.Lines {
		ok, err := repo.DecrementStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			// guard lost to a concurrent writer between the read and the update
			product, err := repo.FindProduct(ctx, line.ProductID)
			if err != nil {
				return nil, insufficientStock(line.Name, 0, line.Quantity)
			}
			return nil, insufficientStock(product.Name, product.Stock, line.Quantity)
		}
	}

	return &Receipt{
		SaleID:        sale.ID,
		ReceiptNumber: receiptNumber,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Paid:          input.Paid,
		Change:        change,
	}, nil
}

// GetSale loads a committed sale with its item snapshots.
func (s *service) GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	sale, err := s.repo.FindSaleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return sale, nil
}

// GetSaleByReceipt loads a committed sale by its receipt number.
func (s *service) GetSaleByReceipt(ctx context.Context, receiptNumber string) (*models.Sale, error) {
	sale, err := s.repo.FindSaleByReceipt(ctx, receiptNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return sale, nil
}

func insufficientStock(name string, available, requested int) error {
	stockErr := &InsufficientStockError{ProductName: name, Available: available, Requested: requested}
	return pkgerrors.Wrap(pkgerrors.CodeInsufficientStock, stockErr, stockErr.Error()).
		WithDetails(map[string]any{
			"product_name": name,
			"available":    available,
			"requested":    requested,
		})
}

func rejectionReason(code pkgerrors.Code) string {
	switch code {
	case pkgerrors.CodeInsufficientStock:
		return "insufficient_stock"
	case pkgerrors.CodeNotFound:
		return "product_missing"
	default:
		return "other"
	}
}
