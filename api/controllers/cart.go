package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftretail/pos-backend/api/responses"
	"github.com/swiftretail/pos-backend/api/validators"
	"github.com/swiftretail/pos-backend/internal/cart"
	"github.com/swiftretail/pos-backend/internal/settings"
	"github.com/swiftretail/pos-backend/pkg/logger"
)

type lineRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
}

func toCartLines(lines []lineRequest) []cart.Line {
	out := make([]cart.Line, len(lines))
	for i, line := range lines {
		out[i] = cart.Line{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		}
	}
	return out
}

type quoteRequest struct {
	Lines      []lineRequest    `json:"lines" validate:"required,min=1,dive"`
	Discount   string           `json:"discount"`
	TaxPercent *decimal.Decimal `json:"tax_percent"`
}

type holdRequest struct {
	Lines      []lineRequest `json:"lines" validate:"required,min=1,dive"`
	CustomerID *uuid.UUID    `json:"customer_id"`
}

// CartQuote prices a line list without side effects. The tax rate comes from
// settings unless the request pins one.
func CartQuote(svc cart.Service, settingsSvc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		taxPercent := settingsSvc.TaxPercent()
		if payload.TaxPercent != nil {
			taxPercent = *payload.TaxPercent
		}

		totals, err := svc.Quote(r.Context(), toCartLines(payload.Lines), payload.Discount, taxPercent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, totals)
	}
}

func CartHold(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload holdRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		held, err := svc.Hold(r.Context(), toCartLines(payload.Lines), payload.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"id":         held.ID,
			"created_at": held.CreatedAt,
		})
	}
}

func CartListHeld(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := svc.ListHeld(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summaries)
	}
}

func CartResume(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resumed, err := svc.Resume(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resumed)
	}
}
