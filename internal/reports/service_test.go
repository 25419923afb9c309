package reports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swiftretail/pos-backend/pkg/db/models"
	pkgerrors "github.com/swiftretail/pos-backend/pkg/errors"
)

func setupReports(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:reports_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},
	))
	return NewService(NewRepository(db)), db
}

func seedSale(t *testing.T, db *gorm.DB, total string, customerID *uuid.UUID, createdAt time.Time) models.Sale {
	t.Helper()
	amount := decimal.RequireFromString(total)
	sale := models.Sale{
		ReceiptNumber: fmt.Sprintf("R%d%s", createdAt.Unix(), uuid.NewString()[:4]),
		CustomerID:    customerID,
		Subtotal:      amount,
		Discount:      decimal.Zero,
		Tax:           decimal.Zero,
		Total:         amount,
		Paid:          amount,
		ChangeAmount:  decimal.Zero,
		PaymentMethod: "cash",
		CashierName:   "Admin",
		CreatedAt:     createdAt,
	}
	require.NoError(t, db.Create(&sale).Error)
	return sale
}

func seedItem(t *testing.T, db *gorm.DB, saleID, productID uuid.UUID, name string, qty int, unit string) {
	t.Helper()
	price := decimal.RequireFromString(unit)
	item := models.SaleItem{
		SaleID:      saleID,
		ProductID:   productID,
		ProductName: name,
		Quantity:    qty,
		UnitPrice:   price,
		TotalPrice:  price.Mul(decimal.NewFromInt(int64(qty))),
	}
	require.NoError(t, db.Create(&item).Error)
}

func TestSalesBetween(t *testing.T) {
	svc, db := setupReports(t)
	ctx := context.Background()

	customer := models.Customer{Name: "Ayesha"}
	require.NoError(t, db.Create(&customer).Error)

	base := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	seedSale(t, db, "10.00", &customer.ID, base)
	seedSale(t, db, "20.00", nil, base.Add(time.Hour))
	seedSale(t, db, "30.00", nil, base.AddDate(0, 0, 3)) // outside range

	rows, err := svc.SalesBetween(ctx, base.Add(-time.Hour), base.AddDate(0, 0, 1), 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// newest first, customer name resolved
	assert.True(t, rows[0].Total.Equal(decimal.RequireFromString("20.00")))
	assert.Nil(t, rows[0].CustomerName)
	require.NotNil(t, rows[1].CustomerName)
	assert.Equal(t, "Ayesha", *rows[1].CustomerName)
}

func TestSalesBetweenRejectsInvertedRange(t *testing.T) {
	svc, _ := setupReports(t)

	now := time.Now()
	_, err := svc.SalesBetween(context.Background(), now, now.Add(-time.Hour), 0)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDailySummary(t *testing.T) {
	svc, db := setupReports(t)
	ctx := context.Background()

	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	s1 := seedSale(t, db, "10.00", nil, day.Add(9*time.Hour))
	s2 := seedSale(t, db, "15.50", nil, day.Add(18*time.Hour))
	seedSale(t, db, "99.00", nil, day.AddDate(0, 0, 1).Add(time.Hour))

	// give the in-range sales some discount and tax to sum
	require.NoError(t, db.Model(&s1).Updates(map[string]any{"discount": "1.00", "tax": "0.50"}).Error)
	require.NoError(t, db.Model(&s2).Updates(map[string]any{"discount": "0.50", "tax": "0.25"}).Error)

	summary, err := svc.DailySummary(ctx, day.Add(13*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "2026-08-10", summary.Date)
	assert.EqualValues(t, 2, summary.SaleCount)
	assert.True(t, summary.Subtotal.Equal(decimal.RequireFromString("25.50")))
	assert.True(t, summary.Discount.Equal(decimal.RequireFromString("1.50")))
	assert.True(t, summary.Tax.Equal(decimal.RequireFromString("0.75")))
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("25.50")))
}

func TestDailySummaryEmptyDay(t *testing.T) {
	svc, _ := setupReports(t)

	summary, err := svc.DailySummary(context.Background(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 0, summary.SaleCount)
	assert.True(t, summary.Total.IsZero())
}

func TestTopProducts(t *testing.T) {
	svc, db := setupReports(t)
	ctx := context.Background()

	now := time.Now()
	s1 := seedSale(t, db, "10.00", nil, now)
	s2 := seedSale(t, db, "20.00", nil, now.Add(time.Minute))

	chaiID, ruskID := uuid.New(), uuid.New()
	seedItem(t, db, s1.ID, chaiID, "Chai", 3, "1.50")
	seedItem(t, db, s2.ID, chaiID, "Chai", 2, "1.50")
	seedItem(t, db, s2.ID, ruskID, "Rusk", 4, "0.75")

	top, err := svc.TopProducts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, "Chai", top[0].ProductName)
	assert.EqualValues(t, 5, top[0].TotalQty)
	assert.True(t, top[0].Revenue.Equal(decimal.RequireFromString("7.50")))
	assert.Equal(t, "Rusk", top[1].ProductName)
}

func TestLowStock(t *testing.T) {
	svc, db := setupReports(t)
	ctx := context.Background()

	products := []models.Product{
		{Name: "Chai", Price: decimal.NewFromInt(1), Stock: 2, MinStock: 5, IsActive: true},
		{Name: "Rusk", Price: decimal.NewFromInt(1), Stock: 10, MinStock: 5, IsActive: true},
		{Name: "Retired", Price: decimal.NewFromInt(1), Stock: 0, MinStock: 5, IsActive: false},
	}
	for i := range products {
		require.NoError(t, db.Create(&products[i]).Error)
	}

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Chai", low[0].Name)
}

func TestCustomerPurchases(t *testing.T) {
	svc, db := setupReports(t)
	ctx := context.Background()

	customer := models.Customer{Name: "Ayesha"}
	require.NoError(t, db.Create(&customer).Error)

	now := time.Now()
	seedSale(t, db, "10.00", &customer.ID, now.Add(-time.Hour))
	seedSale(t, db, "20.00", &customer.ID, now)
	seedSale(t, db, "30.00", nil, now)

	rows, err := svc.CustomerPurchases(ctx, customer.ID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Total.Equal(decimal.RequireFromString("20.00")))
}
