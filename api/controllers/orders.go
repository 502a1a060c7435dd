package controllers

import (
	"context"
	"net/http"

	"github.com/collabinvest/cil-storefront/api/responses"
	"github.com/collabinvest/cil-storefront/api/validators"
	"github.com/collabinvest/cil-storefront/internal/orders"
	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/money"
)

// OrderCreator places storefront orders.
type OrderCreator interface {
	Create(ctx context.Context, in orders.CreateInput) (*orders.CreateResult, error)
}

type createOrderItem struct {
	Name     string       `json:"name"`
	Quantity int          `json:"quantity"`
	Price    money.Amount `json:"price"`
}

type createOrderRequest struct {
	Items           []createOrderItem `json:"items"`
	Total           money.Amount      `json:"total"`
	CustomerName    string            `json:"customerName"`
	CustomerPhone   string            `json:"customerPhone"`
	CustomerEmail   string            `json:"customerEmail"`
	CustomerAddress string            `json:"customerAddress"`
	CustomerNotes   string            `json:"customerNotes"`
}

func (r createOrderRequest) input() orders.CreateInput {
	items := make([]orders.ItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, orders.ItemInput{Name: item.Name, Quantity: item.Quantity, Price: item.Price})
	}
	return orders.CreateInput{
		Items:           items,
		Total:           r.Total,
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		CustomerEmail:   r.CustomerEmail,
		CustomerAddress: r.CustomerAddress,
		CustomerNotes:   r.CustomerNotes,
	}
}

type createOrderResponse struct {
	Success bool `json:"success"`
	*orders.CreateResult
}

// CreateOrder places a storefront order. Field rules live in the order
// service so the messages match whichever client submitted.
func CreateOrder(svc OrderCreator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteStorefrontError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var body createOrderRequest
		if err := validators.DecodeLenientJSONBody(r, &body); err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), body.input())
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}
		responses.WriteStorefront(w, http.StatusCreated, createOrderResponse{Success: true, CreateResult: result})
	}
}
