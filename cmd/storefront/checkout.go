package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/collabinvest/cil-storefront/internal/cart"
	"github.com/collabinvest/cil-storefront/internal/checkout"
)

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var c checkout.Customer
	fs.StringVar(&c.Name, "name", "", "customer name")
	fs.StringVar(&c.Phone, "phone", "", "Nigerian phone number")
	fs.StringVar(&c.Email, "email", "", "email for the confirmation (optional)")
	fs.StringVar(&c.Address, "address", "", "delivery address (optional)")
	fs.StringVar(&c.Notes, "notes", "", "order notes (optional)")
	confirm := fs.Bool("whatsapp", false, "on failure, clear the cart after printing the WhatsApp link")
	timeout := fs.Duration("timeout", 15*time.Second, "API request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := cart.NewStore(a.state)
	if err != nil {
		return err
	}
	submitter, err := checkout.NewHTTPSubmitter(a.apiURL, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   *timeout,
	})
	if err != nil {
		return err
	}
	flow, err := checkout.NewFlow(checkout.FlowParams{
		Cart:      store,
		Submitter: submitter,
		Session:   a.state,
		ShopPhone: a.shopPhone,
		Logger:    a.logg,
	})
	if err != nil {
		return err
	}

	res, err := flow.Checkout(ctx, c)
	switch {
	case errors.Is(err, checkout.ErrSubmitFailed) && res != nil:
		fmt.Fprintln(a.out, "Order submission failed, you can still send it on WhatsApp:")
		fmt.Fprintf(a.out, "  reference: %s\n  %s\n", res.OrderNumber, res.WhatsAppURL)
		if *confirm {
			if err := flow.ConfirmFallback(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Cart cleared.")
		}
		return err
	case err != nil:
		return err
	}

	fmt.Fprintf(a.out, "Order placed: %s\n", res.OrderNumber)
	fmt.Fprintf(a.out, "  confirmation email: %s\n", res.Emails.Customer)
	fmt.Fprintf(a.out, "  continue on WhatsApp: %s\n", res.WhatsAppURL)
	return nil
}
