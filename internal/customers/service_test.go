package customers

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

func setupCustomers(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:customers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Customer{}, &models.Sale{}))

	logg := logger.New(logger.Options{ServiceName: "customers-test", Output: io.Discard})
	return NewService(NewRepository(db), logg), db
}

func strPtr(s string) *string { return &s }

func TestCustomerCRUD(t *testing.T) {
	svc, _ := setupCustomers(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CustomerInput{Name: "Ayesha", Phone: strPtr("0300-1234567")})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ayesha", got.Name)

	updated, err := svc.Update(ctx, created.ID, CustomerInput{Name: "Ayesha Khan", Email: strPtr("ayesha@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Ayesha Khan", updated.Name)
	assert.Nil(t, updated.Phone)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateCustomerRequiresName(t *testing.T) {
	svc, _ := setupCustomers(t)

	_, err := svc.Create(context.Background(), CustomerInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestSearchCustomers(t *testing.T) {
	svc, _ := setupCustomers(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CustomerInput{Name: "Ayesha", Phone: strPtr("0300-1111111")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CustomerInput{Name: "Bilal", Email: strPtr("bilal@example.com")})
	require.NoError(t, err)

	byName, err := svc.List(ctx, "Aye")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Ayesha", byName[0].Name)

	byPhone, err := svc.List(ctx, "0300")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)

	byEmail, err := svc.List(ctx, "bilal@")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, "Bilal", byEmail[0].Name)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteCustomerWithSalesRefused(t *testing.T) {
	svc, db := setupCustomers(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CustomerInput{Name: "Ayesha"})
	require.NoError(t, err)

	sale := models.Sale{
		ReceiptNumber: "R17000000001234",
		CustomerID:    &created.ID,
		Subtotal:      decimal.NewFromInt(5),
		Tax:           decimal.Zero,
		Total:         decimal.NewFromInt(5),
		Paid:          decimal.NewFromInt(5),
		ChangeAmount:  decimal.Zero,
		PaymentMethod: "cash",
		CashierName:   "Admin",
	}
	require.NoError(t, db.Create(&sale).Error)

	err = svc.Delete(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
}
