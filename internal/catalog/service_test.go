package catalog

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

func setupCatalog(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:catalog_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Product{}))

	logg := logger.New(logger.Options{ServiceName: "catalog-test", Output: io.Discard})
	return NewService(NewRepository(db), logg), db
}

func strPtr(s string) *string { return &s }

func TestCreateAndGetProduct(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, ProductInput{
		Name:    "Chai",
		Price:   decimal.RequireFromString("1.505"),
		Barcode: strPtr("8901234"),
		Stock:   10,
	})
	require.NoError(t, err)
	assert.True(t, product.IsActive)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("1.51")), "price rounded to 2dp")

	got, err := svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chai", got.Name)

	byCode, err := svc.GetProductByBarcode(ctx, "8901234")
	require.NoError(t, err)
	assert.Equal(t, product.ID, byCode.ID)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Price: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "X", Price: decimal.NewFromInt(-1)})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	missing := uuid.New()
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "X", Price: decimal.NewFromInt(1), CategoryID: &missing})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDuplicateBarcodeConflicts(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "A", Price: decimal.NewFromInt(1), Barcode: strPtr("111")})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "B", Price: decimal.NewFromInt(2), Barcode: strPtr("111")})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestRetireProductHidesFromListing(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, ProductInput{Name: "Chai", Price: decimal.NewFromInt(1), Stock: 5})
	require.NoError(t, err)

	require.NoError(t, svc.RetireProduct(ctx, product.ID))

	active, err := svc.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListProducts(ctx, ProductFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// the row survives for sale-history lookups
	got, err := svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = svc.GetProductByBarcode(ctx, "whatever")
	require.Error(t, err)
}

func TestAdjustStock(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, ProductInput{Name: "Chai", Price: decimal.NewFromInt(1), Stock: 5})
	require.NoError(t, err)

	updated, err := svc.AdjustStock(ctx, product.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 12, updated.Stock)

	updated, err = svc.AdjustStock(ctx, product.ID, -12)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)

	_, err = svc.AdjustStock(ctx, product.ID, -1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	_, err = svc.AdjustStock(ctx, uuid.New(), 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestSearchProducts(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "Green Chai", Price: decimal.NewFromInt(1), Barcode: strPtr("555")})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Rusk", Price: decimal.NewFromInt(2)})
	require.NoError(t, err)

	byName, err := svc.ListProducts(ctx, ProductFilter{Search: "Chai"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Green Chai", byName[0].Name)

	byCode, err := svc.ListProducts(ctx, ProductFilter{Search: "555"})
	require.NoError(t, err)
	require.Len(t, byCode, 1)
}

func TestCategoryLifecycle(t *testing.T) {
	svc, _ := setupCatalog(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CategoryInput{Name: "Beverages"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Beverages"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	updated, err := svc.UpdateCategory(ctx, category.ID, CategoryInput{Name: "Drinks"})
	require.NoError(t, err)
	assert.Equal(t, "Drinks", updated.Name)

	product, err := svc.CreateProduct(ctx, ProductInput{Name: "Chai", Price: decimal.NewFromInt(1), CategoryID: &category.ID})
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, category.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	// retiring the only product unblocks the delete
	require.NoError(t, svc.RetireProduct(ctx, product.ID))
	require.NoError(t, svc.DeleteCategory(ctx, category.ID))

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)
}
