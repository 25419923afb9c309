package sales

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swiftretail/pos-backend/internal/cart"
	"github.com/swiftretail/pos-backend/pkg/db/models"
	pkgerrors "github.com/swiftretail/pos-backend/pkg/errors"
	"github.com/swiftretail/pos-backend/pkg/logger"
	"github.com/swiftretail/pos-backend/pkg/receipt"
)

type gormTx struct {
	db *gorm.DB
}

func (g gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := g.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func setupSalesDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:sales_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},
	))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, gen *receipt.Generator) Service {
	t.Helper()
	if gen == nil {
		gen = receipt.New()
	}
	logg := logger.New(logger.Options{ServiceName: "sales-test", Output: io.Discard})
	return NewService(gormTx{db: db}, NewRepository(db), gen, nil, logg, 3)
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) models.Product {
	t.Helper()
	product := models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func lineFor(p models.Product, qty int) cart.Line {
	return cart.Line{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, Quantity: qty}
}

func stockOf(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return product.Stock
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestCommitHappyPath(t *testing.T) {
	db := setupSalesDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	chai := seedProduct(t, db, "Chai", "1.50", 10)
	rusk := seedProduct(t, db, "Rusk", "2.00", 4)

	res, err := svc.Commit(ctx, CommitInput{
		Lines:         []cart.Line{lineFor(chai, 2), lineFor(rusk, 1)},
		DiscountSpec:  "10%",
		TaxPercent:    decimal.NewFromInt(5),
		Paid:          decimal.NewFromInt(5),
		PaymentMethod: "cash",
		CashierName:   "Admin",
	})
	require.NoError(t, err)

	assert.True(t, res.Subtotal.Equal(decimal.RequireFromString("5.00")), "subtotal %s", res.Subtotal)
	assert.True(t, res.Discount.Equal(decimal.RequireFromString("0.50")), "discount %s", res.Discount)
	assert.True(t, res.Tax.Equal(decimal.RequireFromString("0.23")), "tax %s", res.Tax)
	assert.True(t, res.Total.Equal(decimal.RequireFromString("4.73")), "total %s", res.Total)
	assert.True(t, res.Change.Equal(decimal.RequireFromString("0.27")), "change %s", res.Change)
	assert.Regexp(t, `^R\d{10}\d{4}$`, res.ReceiptNumber)

	// stock decremented by exactly the committed quantities
	assert.Equal(t, 8, stockOf(t, db, chai.ID))
	assert.Equal(t, 3, stockOf(t, db, rusk.ID))

	sale, err := svc.GetSale(ctx, res.SaleID)
	require.NoError(t, err)
	require.Len(t, sale.Items, 2)
	byName := map[string]models.SaleItem{}
	for _, item := range sale.Items {
		byName[item.ProductName] = item
	}
	assert.True(t, byName["Chai"].TotalPrice.Equal(decimal.RequireFromString("3.00")))
	assert.True(t, byName["Rusk"].TotalPrice.Equal(decimal.RequireFromString("2.00")))
	assert.Equal(t, "cash", sale.PaymentMethod)
}

func TestCommitInsufficientStockRollsBack(t *testing.T) {
	db := setupSalesDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	chai := seedProduct(t, db, "Chai", "1.50", 3)

	_, err := svc.Commit(ctx, CommitInput{
		Lines: []cart.Line{lineFor(chai, 5)},
		Paid:  decimal.NewFromInt(100),
	})
	require.Error(t, err)

	assert.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.As(err).Code())

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Chai", stockErr.ProductName)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)

	// nothing persisted, stock untouched
	assert.EqualValues(t, 0, countRows(t, db, &models.Sale{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.SaleItem{}))
	assert.Equal(t, 3, stockOf(t, db, chai.ID))
}

func TestCommitPartialStockFailureIsAtomic(t *testing.T) {
	db := setupSalesDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	chai := seedProduct(t, db, "Chai", "1.50", 10)
	rusk := seedProduct(t, db, "Rusk", "2.00", 1)

	// first line would succeed alone; second line fails the whole commit
	_, err := svc.Commit(ctx, CommitInput{
		Lines: []cart.Line{lineFor(chai, 2), lineFor(rusk, 3)},
		Paid:  decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.As(err).Code())

	assert.Equal(t, 10, stockOf(t, db, chai.ID))
	assert.Equal(t, 1, stockOf(t, db, rusk.ID))
	assert.EqualValues(t, 0, countRows(t, db, &models.Sale{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.SaleItem{}))
}

func TestCommitInsufficientPayment(t *testing.T) {
	db := setupSalesDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	chai := seedProduct(t, db, "Chai", "1.50", 10)

	input := CommitInput{
		Lines:        []cart.Line{lineFor(chai, 2), {ProductID: chai.ID, Name: chai.Name, UnitPrice: decimal.RequireFromString("2.00"), Quantity: 1}},
		DiscountSpec: "10%",
		TaxPercent:   decimal.NewFromInt(5),
		Paid:         decimal.NewFromInt(4),
	}
	_, err := svc.Commit(ctx, input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInsufficientPayment, pkgerrors.As(err).Code())

	var payErr *InsufficientPaymentError
	require.ErrorAs(t, err, &payErr)
	assert.True(t, payErr.Required.Equal(decimal.RequireFromString("4.73")))
	assert.True(t, payErr.Paid.Equal(decimal.NewFromInt(4)))

	assert.EqualValues(t, 0, countRows(t, db, &models.Sale{}))
	assert.Equal(t, 10, stockOf(t, db, chai.ID))

	// re-submitting with sufficient payment succeeds
	input.Paid = decimal.RequireFromString("4.73")
	res, err := svc.Commit(ctx, input)
	require.NoError(t, err)
	assert.True(t, res.Change.IsZero())
}

func TestCommitEmptyCart(t *testing.T) {
	svc := newTestService(t, setupSalesDB(t), nil)

	_, err := svc.Commit(context.Background(), CommitInput{Paid: decimal.NewFromInt(10)})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeEmptyCart, pkgerrors.As(err).Code())
}

func TestCommitMalformedDiscountFallsBackToZero(t *testing.T) {
	db := setupSalesDB(t)
	svc := newTestService(t, db, nil)

	chai := seedProduct(t, db, "Chai", "1.50", 10)

	res, err := svc.Commit(context.Background(), CommitInput{
		Lines:        []cart.Line{lineFor(chai, 2)},
		DiscountSpec: "abc",
		Paid:         decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	assert.True(t, res.Discount.IsZero())
	assert.True(t, res.Total.Equal(decimal.RequireFromString("3.00")))
}

func TestCommitRetriesReceiptCollision(t *testing.T) {
	db := setupSalesDB(t)

	// pinned clock forces the timestamp half of every number to collide; the
	// random suffix is what keeps the retries distinct
	gen := receipt.NewWithClock(func() time.Time { return time.Unix(1700000000, 0) })
	svc := newTestService(t, db, gen)
	ctx := context.Background()

	chai := seedProduct(t, db, "Chai", "1.50", 100)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		res, err := svc.Commit(ctx, CommitInput{
			Lines: []cart.Line{lineFor(chai, 1)},
			Paid:  decimal.NewFromInt(2),
		})
		require.NoError(t, err)
		assert.False(t, seen[res.ReceiptNumber], "receipt %s reused", res.ReceiptNumber)
		seen[res.ReceiptNumber] = true
	}
	assert.EqualValues(t, 5, countRows(t, db, &models.Sale{}))
}

func TestGetSaleByReceipt(t *testing.T) {
	db := setupSalesDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	chai := seedProduct(t, db, "Chai", "1.50", 10)
	res, err := svc.Commit(ctx, CommitInput{
		Lines: []cart.Line{lineFor(chai, 1)},
		Paid:  decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	sale, err := svc.GetSaleByReceipt(ctx, res.ReceiptNumber)
	require.NoError(t, err)
	assert.Equal(t, res.SaleID, sale.ID)

	_, err = svc.GetSaleByReceipt(ctx, "R00000000000000")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestGetSaleNotFound(t *testing.T) {
	svc := newTestService(t, setupSalesDB(t), nil)

	_, err := svc.GetSale(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
