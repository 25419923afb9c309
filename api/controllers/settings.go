package controllers

import (
	"net/http"

	"github.com/swiftretail/pos-backend/api/responses"
	"github.com/swiftretail/pos-backend/api/validators"
	"github.com/swiftretail/pos-backend/internal/settings"
	"github.com/swiftretail/pos-backend/pkg/logger"
)

type settingsUpdateRequest struct {
	Values map[string]string `json:"values" validate:"required,min=1"`
}

func SettingsList(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.All())
	}
}

// SettingsUpdate writes one or more settings through to storage. Values are
// applied in arbitrary order; a failed key aborts the rest.
func SettingsUpdate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload settingsUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		for key, value := range payload.Values {
			if err := svc.Set(r.Context(), key, value); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, svc.All())
	}
}
