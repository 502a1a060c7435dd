package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/collabinvest/cil-storefront/api/middleware"
	"github.com/collabinvest/cil-storefront/api/responses"
	"github.com/collabinvest/cil-storefront/api/validators"
	"github.com/collabinvest/cil-storefront/internal/admin"
	"github.com/collabinvest/cil-storefront/internal/orders"
	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/pagination"
)

type AdminService interface {
	Login(ctx context.Context, username, password string) (*admin.LoginResult, error)
	Logout(ctx context.Context, sessionID, username string) error
	ListOrders(ctx context.Context, params orders.ListParams) (orders.ListResult, error)
	GetOrder(ctx context.Context, orderNumber string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, actor, orderNumber string, in orders.StatusUpdateInput) (*models.Order, error)
	Stats(ctx context.Context) (*admin.Dashboard, error)
	RecentEmails(ctx context.Context, params pagination.Params) (pagination.Page[models.EmailRecord], error)
	RecentActivity(ctx context.Context, n int) ([]admin.ActivityEntry, error)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func AdminLogin(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Login(r.Context(), body.Username, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminLogout(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := svc.Logout(ctx, middleware.SessionIDFromContext(ctx), middleware.AdminFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AdminListOrders(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.QueryPage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := validators.QueryOrderStatus(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListOrders(r.Context(), orders.ListParams{Params: page, Status: status})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminGetOrder(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.GetOrder(r.Context(), chi.URLParam(r, "orderNumber"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type statusUpdateRequest struct {
	Status            string     `json:"status" validate:"required,orderstatus"`
	Title             string     `json:"title" validate:"max=200"`
	Description       string     `json:"description" validate:"max=2000"`
	Completed         *bool      `json:"completed"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
	TrackingNumber    *string    `json:"trackingNumber"`
}

// AdminUpdateOrderStatus appends to the order timeline.
func AdminUpdateOrderStatus(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body statusUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.UpdateOrderStatus(r.Context(), middleware.AdminFromContext(r.Context()), chi.URLParam(r, "orderNumber"), orders.StatusUpdateInput{
			Status:            status,
			Title:             body.Title,
			Description:       body.Description,
			Completed:         body.Completed,
			EstimatedDelivery: body.EstimatedDelivery,
			TrackingNumber:    body.TrackingNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func AdminStats(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}

func AdminEmails(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.QueryPage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.RecentEmails(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminActivity(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.QueryLimit(r, 50, admin.DefaultActivityLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := svc.RecentActivity(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
