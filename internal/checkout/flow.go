package checkout

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/collabinvest/cil-storefront/internal/cart"
	"github.com/collabinvest/cil-storefront/internal/clientstore"
	"github.com/collabinvest/cil-storefront/internal/control"
	"github.com/collabinvest/cil-storefront/internal/orders"
	"github.com/collabinvest/cil-storefront/internal/notifications"
	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	"github.com/collabinvest/cil-storefront/pkg/logger"
)

var (
	ErrEmptyCart    = errors.New("checkout: cart is empty")
	ErrNameRequired = errors.New("checkout: customer name is required")
	ErrInvalidPhone = errors.New("checkout: please enter a valid Nigerian phone number")
	ErrInvalidEmail = errors.New("checkout: please enter a valid email address")
	ErrBusy         = errors.New("checkout: order already being placed")
	ErrSubmitFailed = errors.New("checkout: order submission failed")
)

var nigerianPhone = regexp.MustCompile(`^(\+?234|0)[789][01]\d{8}$`)

type Customer struct {
	Name    string
	Phone   string
	Email   string
	Address string
	Notes   string
}

// Result describes a checkout attempt. On a failed submission Fallback is
// set and WhatsAppURL still carries the order so the caller can offer it.
type Result struct {
	OrderNumber string
	Order       *models.Order
	Emails      orders.EmailSummary
	WhatsAppURL string
	Fallback    bool
}

type FlowParams struct {
	Cart      *cart.Store
	Submitter Submitter
	// Session receives lastOrderNumber for the track form.
	Session   clientstore.Storage
	ShopPhone string
	Numbers   orders.NumberGenerator
	Logger    *logger.Logger
	Now       func() time.Time
}

// Flow is the customer side of placing an order.
type Flow struct {
	cart      *cart.Store
	submitter Submitter
	session   clientstore.Storage
	shopPhone string
	numbers   orders.NumberGenerator
	logg      *logger.Logger
	now       func() time.Time
	validate  *validator.Validate
	submit    control.Control
}

func NewFlow(p FlowParams) (*Flow, error) {
	if p.Cart == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if p.Submitter == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	if p.Session == nil {
		p.Session = clientstore.NewMemory()
	}
	if p.Numbers == nil {
		p.Numbers = orders.NewGenerator()
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Flow{
		cart:      p.Cart,
		submitter: p.Submitter,
		session:   p.Session,
		shopPhone: p.ShopPhone,
		numbers:   p.Numbers,
		logg:      p.Logger,
		now:       p.Now,
		validate:  validator.New(),
	}, nil
}

// Checkout submits the cart. On success the cart is cleared and the order
// number handed to the session. When the API cannot be reached or refuses the
// order, the returned error wraps ErrSubmitFailed and the Result carries a
// WhatsApp fallback; the cart is left intact until ConfirmFallback.
func (f *Flow) Checkout(ctx context.Context, c Customer) (*Result, error) {
	c = trimCustomer(c)
	if err := f.validateCustomer(c); err != nil {
		return nil, err
	}
	items := f.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var (
		res    *Result
		subErr error
	)
	ran, _ := f.submit.Do(func() error {
		res, subErr = f.place(ctx, c, items)
		return subErr
	})
	if !ran {
		return nil, ErrBusy
	}
	return res, subErr
}

// ConfirmFallback empties the cart once the customer chose to continue on
// WhatsApp after a failed submission.
func (f *Flow) ConfirmFallback() error {
	return f.cart.Clear()
}

func (f *Flow) place(ctx context.Context, c Customer, items []cart.Item) (*Result, error) {
	req := OrderRequest{
		Items:           make([]OrderLine, 0, len(items)),
		Total:           f.cart.Total(),
		CustomerName:    c.Name,
		CustomerPhone:   c.Phone,
		CustomerEmail:   c.Email,
		CustomerAddress: c.Address,
		CustomerNotes:   c.Notes,
	}
	for _, it := range items {
		req.Items = append(req.Items, OrderLine{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}

	resp, err := f.submitter.SubmitOrder(ctx, req, uuid.NewString())
	if err != nil {
		f.logg.Error(ctx, "checkout.submit_failed", err)
		return f.fallback(req), fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	order := resp.Order
	ctx = f.logg.WithOrderNumber(ctx, order.OrderNumber)
	if err := f.cart.Clear(); err != nil {
		f.logg.Error(ctx, "checkout.clear_cart", err)
	}
	if err := f.session.Set(clientstore.KeyLastOrderNumber, order.OrderNumber); err != nil {
		f.logg.Error(ctx, "checkout.session_handoff", err)
	}

	link := resp.WhatsAppURL
	if link == "" {
		link = notifications.WhatsAppLink(order, f.shopPhone)
	}
	f.logg.Info(ctx, "checkout.placed")
	return &Result{
		OrderNumber: order.OrderNumber,
		Order:       order,
		Emails:      resp.Emails,
		WhatsAppURL: link,
	}, nil
}

// fallback builds a provisional order so the WhatsApp message still lists
// everything the customer picked.
func (f *Flow) fallback(req OrderRequest) *Result {
	now := f.now().UTC()
	draft := &models.Order{
		OrderNumber:     f.numbers.Generate(),
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		CustomerNotes:   req.CustomerNotes,
		Total:           req.Total,
		Status:          enums.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, line := range req.Items {
		draft.Items = append(draft.Items, models.OrderItem{Name: line.Name, Quantity: line.Quantity, Price: line.Price})
	}
	return &Result{
		OrderNumber: draft.OrderNumber,
		Order:       draft,
		WhatsAppURL: notifications.WhatsAppLink(draft, f.shopPhone),
		Fallback:    true,
	}
}

func (f *Flow) validateCustomer(c Customer) error {
	if c.Name == "" {
		return ErrNameRequired
	}
	if !nigerianPhone.MatchString(strings.ReplaceAll(c.Phone, " ", "")) {
		return ErrInvalidPhone
	}
	if c.Email != "" {
		if err := f.validate.Var(c.Email, "email"); err != nil {
			return ErrInvalidEmail
		}
	}
	return nil
}

func trimCustomer(c Customer) Customer {
	return Customer{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.TrimSpace(c.Email),
		Address: strings.TrimSpace(c.Address),
		Notes:   strings.TrimSpace(c.Notes),
	}
}
