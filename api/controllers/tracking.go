package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/collabinvest/cil-storefront/api/middleware"
	"github.com/collabinvest/cil-storefront/api/responses"
	"github.com/collabinvest/cil-storefront/api/validators"
	"github.com/collabinvest/cil-storefront/internal/orders"
	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/logger"
)

type OrderTracker interface {
	Track(ctx context.Context, orderNumber, email, phone string) (*orders.RedactedOrder, error)
	Lookup(ctx context.Context, orderNumber string, full bool) (any, error)
}

type trackRequest struct {
	OrderNumber string `json:"orderNumber"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

type orderEnvelope struct {
	Success bool `json:"success"`
	Order   any  `json:"order"`
}

// TrackOrder looks an order up by number and optional contact details.
func TrackOrder(svc OrderTracker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteStorefrontError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking unavailable"))
			return
		}
		var body trackRequest
		if err := validators.DecodeLenientJSONBody(r, &body); err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Track(r.Context(), body.OrderNumber, body.Email, body.Phone)
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}
		responses.WriteStorefront(w, http.StatusOK, orderEnvelope{Success: true, Order: order})
	}
}

// GetOrderByNumber serves the redacted view, or the full order when
// OptionalAuth recognised an admin.
func GetOrderByNumber(svc OrderTracker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteStorefrontError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking unavailable"))
			return
		}
		full := middleware.AdminFromContext(r.Context()) != ""
		order, err := svc.Lookup(r.Context(), chi.URLParam(r, "orderNumber"), full)
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}
		responses.WriteStorefront(w, http.StatusOK, orderEnvelope{Success: true, Order: order})
	}
}
