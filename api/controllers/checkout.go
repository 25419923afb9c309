package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftretail/pos-backend/api/responses"
	"github.com/swiftretail/pos-backend/api/validators"
	"github.com/swiftretail/pos-backend/internal/sales"
	"github.com/swiftretail/pos-backend/internal/settings"
	"github.com/swiftretail/pos-backend/pkg/logger"
)

type checkoutRequest struct {
	Lines         []lineRequest    `json:"lines" validate:"required,min=1,dive"`
	Discount      string           `json:"discount"`
	TaxPercent    *decimal.Decimal `json:"tax_percent"`
	Paid          decimal.Decimal  `json:"paid" validate:"required"`
	PaymentMethod string           `json:"payment_method" validate:"omitempty,oneof=cash card mobile"`
	CashierName   string           `json:"cashier_name"`
	CustomerID    *uuid.UUID       `json:"customer_id"`
}

// Checkout commits the sale. Tax rate and cashier name default from settings
// when the request leaves them out.
func Checkout(svc sales.Service, settingsSvc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		taxPercent := settingsSvc.TaxPercent()
		if payload.TaxPercent != nil {
			taxPercent = *payload.TaxPercent
		}
		cashier := validators.SanitizeString(payload.CashierName, 100)
		if cashier == "" {
			cashier = settingsSvc.CashierName()
		}

		receipt, err := svc.Commit(r.Context(), sales.CommitInput{
			Lines:         toCartLines(payload.Lines),
			DiscountSpec:  payload.Discount,
			TaxPercent:    taxPercent,
			Paid:          payload.Paid,
			PaymentMethod: payload.PaymentMethod,
			CashierName:   cashier,
			CustomerID:    payload.CustomerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}
