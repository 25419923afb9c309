package sales

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InsufficientStockError reports the first line whose requested quantity
// exceeds the persisted stock at commit time.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s: available %d, requested %d", e.ProductName, e.Available, e.Requested)
}

// InsufficientPaymentError reports a tendered amount below the sale total.
type InsufficientPaymentError struct {
	Required decimal.Decimal
	Paid     decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("payment %s does not cover total %s", e.Paid.StringFixed(2), e.Required.StringFixed(2))
}
