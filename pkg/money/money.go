// Package money implements the sale pricing arithmetic: subtotal, discount,
// tax and change, all on decimal values rounded to two places at the edges.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountKind distinguishes the two accepted discount spellings.
type DiscountKind int

const (
	DiscountNone DiscountKind = iota
	DiscountFlat
	DiscountPercent
)

// Discount is a parsed discount specification.
type Discount struct {
	Kind  DiscountKind
	Value decimal.Decimal
}

// Line is the priced portion of a cart line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals is the result of pricing a cart. DiscountIgnored is set when the
// operator supplied a discount spec that did not parse; the fallback to zero
// is deliberate leniency, but callers are expected to surface it.
type Totals struct {
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	DiscountIgnored bool
}

// ParseDiscount interprets spec as either "N%" (0-100 inclusive) or a flat
// non-negative amount. Malformed or out-of-range input parses as no discount
// with ok=false rather than an error.
func ParseDiscount(spec string) (Discount, bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Discount{Kind: DiscountNone}, true
	}

	if strings.HasSuffix(spec, "%") {
		pct, err := decimal.NewFromString(strings.TrimSuffix(spec, "%"))
		if err != nil || pct.IsNegative() || pct.GreaterThan(hundred) {
			return Discount{Kind: DiscountNone}, false
		}
		return Discount{Kind: DiscountPercent, Value: pct}, true
	}

	amount, err := decimal.NewFromString(spec)
	if err != nil || amount.IsNegative() {
		return Discount{Kind: DiscountNone}, false
	}
	if amount.IsZero() {
		return Discount{Kind: DiscountNone}, true
	}
	return Discount{Kind: DiscountFlat, Value: amount}, true
}

// Amount resolves the discount against a subtotal, capped so the discounted
// subtotal never goes negative.
func (d Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch d.Kind {
	case DiscountPercent:
		amount = subtotal.Mul(d.Value).Div(hundred)
	case DiscountFlat:
		amount = d.Value
	default:
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount.Round(2)
}

// Quote prices the lines with the given discount spec and tax percentage. Tax
// applies after the discount, at one rate for the whole sale.
func Quote(lines []Line, discountSpec string, taxPercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(2)

	discount, ok := ParseDiscount(discountSpec)
	discountAmount := discount.Amount(subtotal)

	taxable := subtotal.Sub(discountAmount)
	tax := taxable.Mul(taxPercent).Div(hundred).Round(2)

	return Totals{
		Subtotal:        subtotal,
		Discount:        discountAmount,
		Tax:             tax,
		Total:           taxable.Add(tax).Round(2),
		DiscountIgnored: !ok,
	}
}

// Change returns paid minus total rounded to two places. Negative change means
// the payment does not cover the sale.
func Change(paid, total decimal.Decimal) decimal.Decimal {
	return paid.Sub(total).Round(2)
}
