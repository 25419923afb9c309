// Package catalog manages products and categories. Products referenced by
// sales are never hard-deleted; retirement flips is_active so history keeps
// resolving.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swiftretail/pos-backend/pkg/db"
	"github.com/swiftretail/pos-backend/pkg/db/models"
	pkgerrors "github.com/swiftretail/pos-backend/pkg/errors"
	"github.com/swiftretail/pos-backend/pkg/logger"
)

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string
	CategoryID  *uuid.UUID
	Price       decimal.Decimal
	Cost        decimal.Decimal
	Barcode     *string
	Stock       int
	Description *string
	MinStock    int
}

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	Name        string
	Description *string
}

// Service is the catalog management surface.
type Service interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error)
	RetireProduct(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*models.Product, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) Service {
	return &service{repo: repo, logg: logg}
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "product not found", "load product")
	}
	return product, nil
}

func (s *service) GetProductByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	if barcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}
	product, err := s.repo.FindProductByBarcode(ctx, barcode)
	if err != nil {
		return nil, mapNotFound(err, "no active product with that barcode", "barcode lookup")
	}
	return product, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}
	if err := s.checkCategoryExists(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        input.Name,
		CategoryID:  input.CategoryID,
		Price:       input.Price.Round(2),
		Cost:        input.Cost.Round(2),
		Barcode:     normalizeBarcode(input.Barcode),
		Stock:       input.Stock,
		Description: input.Description,
		MinStock:    input.MinStock,
		IsActive:    true,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "barcode already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID.String()), "product created")
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}

	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "product not found", "load product")
	}
	if err := s.checkCategoryExists(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.CategoryID = input.CategoryID
	product.Price = input.Price.Round(2)
	product.Cost = input.Cost.Round(2)
	product.Barcode = normalizeBarcode(input.Barcode)
	product.Stock = input.Stock
	product.Description = input.Description
	product.MinStock = input.MinStock

	if err := s.repo.SaveProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "barcode already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return product, nil
}

func (s *service) RetireProduct(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.DeactivateProduct(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retire product")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", id.String()), "product retired")
	return nil
}

func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*models.Product, error) {
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock adjustment cannot be zero")
	}

	ok, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
	}
	if !ok {
		// either no such product or the delta would take stock negative
		if _, err := s.repo.FindProduct(ctx, id); err != nil {
			return nil, mapNotFound(err, "product not found", "load product")
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "adjustment would make stock negative")
	}

	return s.GetProduct(ctx, id)
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category := &models.Category{Name: input.Name, Description: input.Description}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "category not found", "load category")
	}

	category.Name = input.Name
	category.Description = input.Description
	if err := s.repo.SaveCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCategory(ctx, id); err != nil {
		return mapNotFound(err, "category not found", "load category")
	}

	n, err := s.repo.CountActiveProductsInCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	if n > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has active products").
			WithDetails(map[string]any{"active_products": n})
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func (s *service) checkCategoryExists(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.repo.FindCategory(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return nil
}

func validateProduct(input ProductInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price.IsNegative() || input.Cost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price and cost cannot be negative")
	}
	if input.Stock < 0 || input.MinStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock levels cannot be negative")
	}
	return nil
}

func normalizeBarcode(barcode *string) *string {
	if barcode == nil || *barcode == "" {
		return nil
	}
	return barcode
}

func mapNotFound(err error, notFoundMsg, wrapMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, wrapMsg)
}
