// Package reports serves the read-only analytical queries behind the
// dashboard: sales listings, daily summaries, product rankings and low-stock
// alerts.
package reports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/swiftretail/pos-backend/pkg/db/models"
	pkgerrors "github.com/swiftretail/pos-backend/pkg/errors"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Service is the reporting surface.
type Service interface {
	SalesBetween(ctx context.Context, from, to time.Time, limit int) ([]SaleRow, error)
	DailySummary(ctx context.Context, day time.Time) (*DailySummary, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
	LowStock(ctx context.Context) ([]models.Product, error)
	CustomerPurchases(ctx context.Context, customerID uuid.UUID, limit int) ([]PurchaseRow, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

func clampLimit(limit int) int {
	if limit < 1 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func (s *service) SalesBetween(ctx context.Context, from, to time.Time, limit int) ([]SaleRow, error) {
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range end must be after start")
	}

	rows, err := s.repo.SalesBetween(ctx, from, to, clampLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return rows, nil
}

// DailySummary aggregates the calendar day containing the given instant, in
// the instant's location.
func (s *service) DailySummary(ctx context.Context, day time.Time) (*DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	summary, err := s.repo.SummaryBetween(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "daily summary")
	}
	summary.Date = start.Format("2006-01-02")
	return summary, nil
}

func (s *service) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.repo.TopProducts(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top products")
	}
	return rows, nil
}

func (s *service) LowStock(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "low stock listing")
	}
	return products, nil
}

func (s *service) CustomerPurchases(ctx context.Context, customerID uuid.UUID, limit int) ([]PurchaseRow, error) {
	rows, err := s.repo.CustomerPurchases(ctx, customerID, clampLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "customer purchases")
	}
	return rows, nil
}
