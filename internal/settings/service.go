// Package settings holds the terminal's operating parameters: tax rate,
// currency symbol, receipt footer, cashier name and theme. Values live in a
// small key/value table, cached in memory and written through on change.
package settings

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/swiftretail/pos-backend/pkg/errors"
	"github.com/swiftretail/pos-backend/pkg/logger"
)

// Well-known setting keys.
const (
	KeyTaxPercent     = "tax_percent"
	KeyCurrencySymbol = "currency_symbol"
	KeyReceiptFooter  = "receipt_footer"
	KeyCashierName    = "cashier_name"
	KeyTheme          = "theme"
)

// Defaults seeds a fresh database; existing rows are never overwritten.
var Defaults = map[string]string{
	KeyTaxPercent:     "0.0",
	KeyCurrencySymbol: "PKR",
	KeyReceiptFooter:  "Thank you for shopping with us!",
	KeyCashierName:    "Admin",
	KeyTheme:          "light",
}

// Service is the cached settings surface.
type Service interface {
	Load(ctx context.Context) error
	Get(key string) (string, bool)
	Set(ctx context.Context, key, value string) error
	All() map[string]string
	TaxPercent() decimal.Decimal
	CashierName() string
}

type service struct {
	repo *Repository
	logg *logger.Logger

	mu    sync.RWMutex
	cache map[string]string
}

func NewService(repo *Repository, logg *logger.Logger) Service {
	return &service{repo: repo, logg: logg, cache: map[string]string{}}
}

// Load seeds missing defaults and fills the cache. Called once at startup;
// safe to call again to re-sync.
func (s *service) Load(ctx context.Context) error {
	if err := s.repo.InsertMissing(ctx, Defaults); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed default settings")
	}

	rows, err := s.repo.All(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}

	cache := make(map[string]string, len(rows))
	for _, row := range rows {
		cache[row.Key] = row.Value
	}

	s.mu.Lock()
	s.cache = cache
	s.mu.Unlock()

	s.logg.Info(s.logg.WithField(ctx, "settings", len(cache)), "settings loaded")
	return nil
}

func (s *service) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.cache[key]
	return value, ok
}

// Set writes through to the database before updating the cache, so a failed
// write never leaves the cache ahead of storage.
func (s *service) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "setting key is required")
	}
	if key == KeyTaxPercent {
		pct, err := decimal.NewFromString(value)
		if err != nil || pct.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "tax_percent must be a non-negative number")
		}
	}

	if err := s.repo.Upsert(ctx, key, value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save setting")
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()
	return nil
}

func (s *service) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.cache))
	for k, v := range s.cache {
		out[k] = v
	}
	return out
}

// TaxPercent returns the configured rate, zero when unset or unparseable.
func (s *service) TaxPercent() decimal.Decimal {
	value, ok := s.Get(KeyTaxPercent)
	if !ok {
		return decimal.Zero
	}
	pct, err := decimal.NewFromString(value)
	if err != nil || pct.IsNegative() {
		return decimal.Zero
	}
	return pct
}

// CashierName returns the configured operator name, falling back to the
// default.
func (s *service) CashierName() string {
	if name, ok := s.Get(KeyCashierName); ok && name != "" {
		return name
	}
	return Defaults[KeyCashierName]
}
