package settings

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

func setupSettings(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:settings_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Setting{}))

	logg := logger.New(logger.Options{ServiceName: "settings-test", Output: io.Discard})
	return NewService(NewRepository(db), logg), db
}

func TestLoadSeedsDefaults(t *testing.T) {
	svc, _ := setupSettings(t)
	require.NoError(t, svc.Load(context.Background()))

	symbol, ok := svc.Get(KeyCurrencySymbol)
	require.True(t, ok)
	assert.Equal(t, "PKR", symbol)

	assert.True(t, svc.TaxPercent().IsZero())
	assert.Equal(t, "Admin", svc.CashierName())
	assert.Len(t, svc.All(), len(Defaults))
}

func TestLoadKeepsOperatorOverrides(t *testing.T) {
	svc, db := setupSettings(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Setting{Key: KeyTaxPercent, Value: "17"}).Error)
	require.NoError(t, svc.Load(ctx))

	assert.True(t, svc.TaxPercent().Equal(decimal.NewFromInt(17)))

	// a second load does not reset it either
	require.NoError(t, svc.Load(ctx))
	assert.True(t, svc.TaxPercent().Equal(decimal.NewFromInt(17)))
}

func TestSetWritesThrough(t *testing.T) {
	svc, db := setupSettings(t)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	require.NoError(t, svc.Set(ctx, KeyReceiptFooter, "Khuda hafiz!"))

	value, ok := svc.Get(KeyReceiptFooter)
	require.True(t, ok)
	assert.Equal(t, "Khuda hafiz!", value)

	var row models.Setting
	require.NoError(t, db.First(&row, "key = ?", KeyReceiptFooter).Error)
	assert.Equal(t, "Khuda hafiz!", row.Value)
}

func TestSetValidatesTaxPercent(t *testing.T) {
	svc, _ := setupSettings(t)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	for _, bad := range []string{"abc", "-5"} {
		err := svc.Set(ctx, KeyTaxPercent, bad)
		require.Error(t, err, "value %q", bad)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	}

	require.NoError(t, svc.Set(ctx, KeyTaxPercent, "5.5"))
	assert.True(t, svc.TaxPercent().Equal(decimal.RequireFromString("5.5")))
}

func TestSetRequiresKey(t *testing.T) {
	svc, _ := setupSettings(t)

	err := svc.Set(context.Background(), "", "x")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
