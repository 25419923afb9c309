package cart

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swiftretail/pos-backend/pkg/db/models"
	pkgerrors "github.com/swiftretail/pos-backend/pkg/errors"
	"github.com/swiftretail/pos-backend/pkg/logger"
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

func setupCartDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:cart_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Customer{}, &models.HeldCart{}))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "cart-test", Output: io.Discard})
	return NewService(gormTx{db: db}, NewRepository(db), logg)
}

func TestQuoteFlagsIgnoredDiscount(t *testing.T) {
	svc := newTestService(t, setupCartDB(t))

	lines := []Line{{ProductID: uuid.New(), Name: "Chai", UnitPrice: decimal.RequireFromString("2.50"), Quantity: 2}}

	totals, err := svc.Quote(context.Background(), lines, "abc", decimal.Zero)
	require.NoError(t, err)
	assert.True(t, totals.DiscountIgnored)
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("5.00")))
}

func TestQuoteRejectsBadLines(t *testing.T) {
	svc := newTestService(t, setupCartDB(t))

	_, err := svc.Quote(context.Background(), []Line{{Quantity: 0}}, "", decimal.Zero)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestHoldRejectsEmptyCart(t *testing.T) {
	svc := newTestService(t, setupCartDB(t))

	_, err := svc.Hold(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeEmptyCart, pkgerrors.As(err).Code())
}

func TestHoldListResume(t *testing.T) {
	db := setupCartDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	customer := models.Customer{Name: "Ayesha"}
	require.NoError(t, db.Create(&customer).Error)

	lines := []Line{
		{ProductID: uuid.New(), Name: "Chai", UnitPrice: decimal.RequireFromString("1.50"), Quantity: 3},
		{ProductID: uuid.New(), Name: "Rusk", UnitPrice: decimal.RequireFromString("0.75"), Quantity: 1},
	}

	held, err := svc.Hold(ctx, lines, &customer.ID)
	require.NoError(t, err)

	summaries, err := svc.ListHeld(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, held.ID, summaries[0].ID)
	assert.Equal(t, 2, summaries[0].ItemCount)
	require.NotNil(t, summaries[0].CustomerName)
	assert.Equal(t, "Ayesha", *summaries[0].CustomerName)

	resumed, err := svc.Resume(ctx, held.ID)
	require.NoError(t, err)
	require.Len(t, resumed.Lines, 2)
	assert.Equal(t, lines[0].ProductID, resumed.Lines[0].ProductID)
	require.NotNil(t, resumed.CustomerID)
	assert.Equal(t, customer.ID, *resumed.CustomerID)

	// the hold is consumed
	_, err = svc.Resume(ctx, held.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	summaries, err = svc.ListHeld(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
