package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/swiftretail/pos-backend/api/responses"
	"github.com/swiftretail/pos-backend/api/validators"
	"github.com/swiftretail/pos-backend/internal/sales"
	"github.com/swiftretail/pos-backend/internal/settings"
	"github.com/swiftretail/pos-backend/pkg/db/models"
	"github.com/swiftretail/pos-backend/pkg/logger"
)

// saleReceiptView is the printable rendering of a committed sale.
type saleReceiptView struct {
	ReceiptNumber string              `json:"receipt_number"`
	CreatedAt     time.Time           `json:"created_at"`
	CashierName   string              `json:"cashier_name"`
	Currency      string              `json:"currency"`
	Items         []receiptLineView   `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	Tax           decimal.Decimal     `json:"tax"`
	Total         decimal.Decimal     `json:"total"`
	Paid          decimal.Decimal     `json:"paid"`
	Change        decimal.Decimal     `json:"change"`
	PaymentMethod string              `json:"payment_method"`
	Footer        string              `json:"footer"`
}

type receiptLineView struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

func newSaleReceiptView(sale *models.Sale, settingsSvc settings.Service) saleReceiptView {
	currency, _ := settingsSvc.Get(settings.KeyCurrencySymbol)
	footer, _ := settingsSvc.Get(settings.KeyReceiptFooter)

	items := make([]receiptLineView, len(sale.Items))
	for i, item := range sale.Items {
		items[i] = receiptLineView{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.TotalPrice,
		}
	}

	return saleReceiptView{
		ReceiptNumber: sale.ReceiptNumber,
		CreatedAt:     sale.CreatedAt,
		CashierName:   sale.CashierName,
		Currency:      currency,
		Items:         items,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Tax:           sale.Tax,
		Total:         sale.Total,
		Paid:          sale.Paid,
		Change:        sale.ChangeAmount,
		PaymentMethod: sale.PaymentMethod,
		Footer:        footer,
	}
}

// SaleGet returns one committed sale, by id or by receipt number when the
// path value starts with "R".
func SaleGet(svc sales.Service, settingsSvc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var (
			sale *models.Sale
			err  error
		)
		if raw := chi.URLParam(r, "id"); strings.HasPrefix(raw, "R") {
			sale, err = svc.GetSaleByReceipt(ctx, raw)
		} else {
			id, parseErr := validators.ParseUUIDParam(r, "id")
			if parseErr != nil {
				responses.WriteError(ctx, logg, w, parseErr)
				return
			}
			sale, err = svc.GetSale(ctx, id)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSaleReceiptView(sale, settingsSvc))
	}
}
