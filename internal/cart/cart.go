// Package cart models the operator's in-progress order and the hold/resume
// flow. The line list itself is a plain value owned by the calling session;
// nothing here touches persistent state except the held-cart service.
package cart

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftretail/pos-backend/pkg/db/models"
	pkgerrors "github.com/swiftretail/pos-backend/pkg/errors"
	"github.com/swiftretail/pos-backend/pkg/money"
)

// Line is one cart entry. Name and UnitPrice are snapshots taken when the
// product was added; a later catalog price change does not reprice the line.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Cart is an ordered collection of lines.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Add appends the product with quantity 1, or increments an existing line.
// The stock ceiling here is a soft check for early operator feedback; the
// commit-time check against persisted stock is the authority.
func (c *Cart) Add(product models.Product) error {
	for i, line := range c.Lines {
		if line.ProductID == product.ID {
			if line.Quantity+1 > product.Stock {
				return stockCeiling(product.Name, product.Stock, line.Quantity+1)
			}
			c.Lines[i].Quantity++
			return nil
		}
	}
	if product.Stock < 1 {
		return stockCeiling(product.Name, product.Stock, 1)
	}
	c.Lines = append(c.Lines, Line{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  1,
	})
	return nil
}

// SetQuantity replaces the quantity at index. Zero removes the line; negative
// quantities are rejected.
func (c *Cart) SetQuantity(index, qty int) error {
	if index < 0 || index >= len(c.Lines) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no cart line at index %d", index))
	}
	if qty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if qty == 0 {
		return c.Remove(index)
	}
	c.Lines[index].Quantity = qty
	return nil
}

// Remove deletes the line at index, preserving order.
func (c *Cart) Remove(index int) error {
	if index < 0 || index >= len(c.Lines) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no cart line at index %d", index))
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	return nil
}

// Clear drops all lines.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Serialize encodes the line list for held-cart storage.
func (c *Cart) Serialize() (string, error) {
	data, err := json.Marshal(c.Lines)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serialize cart")
	}
	return string(data), nil
}

// Deserialize decodes a held-cart payload back into a line list.
func Deserialize(data string) ([]Line, error) {
	var lines []Line
	if err := json.Unmarshal([]byte(data), &lines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deserialize cart")
	}
	return lines, nil
}

// MoneyLines projects the cart into the calculator's input shape.
func MoneyLines(lines []Line) []money.Line {
	out := make([]money.Line, len(lines))
	for i, line := range lines {
		out[i] = money.Line{UnitPrice: line.UnitPrice, Quantity: line.Quantity}
	}
	return out
}

func stockCeiling(name string, available, requested int) error {
	return pkgerrors.New(
		pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("not enough stock for %s", name),
	).WithDetails(map[string]any{
		"product_name": name,
		"available":    available,
		"requested":    requested,
	})
}
