package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/collabinvest/cil-storefront/internal/tracking"
)

func (a *app) track(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("track", flag.ContinueOnError)
	fs.SetOutput(a.out)
	orderNumber := fs.String("order", "", "order number (defaults to the last order placed)")
	email := fs.String("email", "", "email used on the order")
	phone := fs.String("phone", "", "phone used on the order")
	watch := fs.Bool("watch", false, "keep refreshing until interrupted")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fetcher, err := tracking.NewHTTPFetcher(a.apiURL, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return err
	}
	client, err := tracking.New(tracking.Options{
		Fetcher:     fetcher,
		Renderer:    &textRenderer{out: a.out},
		URL:         urlPrinter{out: a.out},
		Session:     a.state,
		AutoRefresh: *watch,
		Logger:      a.logg,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	number := *orderNumber
	if number == "" {
		number = client.Prefill()
	}
	if err := client.Submit(ctx, number, *email, *phone); err != nil {
		return err
	}
	if !*watch {
		return nil
	}
	<-ctx.Done()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// textRenderer prints the tracking page to a terminal.
type textRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

func (r *textRenderer) Loading(on bool) {
	if on {
		r.println("Loading...")
	}
}

func (r *textRenderer) Render(v tracking.View) {
	var b strings.Builder
	order := v.Order
	fmt.Fprintf(&b, "Order %s  [%s]  %d%%\n", order.OrderNumber, v.StatusLabel, v.Progress)
	fmt.Fprintf(&b, "Placed %s by %s\n", order.CreatedAt.Format("Jan 2, 2006 15:04"), order.CustomerName)
	if order.TrackingNumber != nil && *order.TrackingNumber != "" {
		fmt.Fprintf(&b, "Tracking number: %s\n", *order.TrackingNumber)
	}
	if order.EstimatedDelivery != nil {
		fmt.Fprintf(&b, "Estimated delivery: %s\n", order.EstimatedDelivery.Format("Jan 2, 2006"))
	}
	b.WriteString("\nTimeline\n")
	for _, e := range v.Timeline {
		date := ""
		if !e.Date.IsZero() {
			date = e.Date.Format("Jan 2 15:04")
		}
		fmt.Fprintf(&b, "  %s %-12s %-20s %s\n", timelineMark(e.State), date, e.Title, e.Description)
	}
	b.WriteString("\nItems\n")
	for _, it := range v.Items {
		fmt.Fprintf(&b, "  %d. %s x%d  %s\n", it.Position, it.Name, it.Quantity, it.LineTotal)
	}
	fmt.Fprintf(&b, "Total: %s\n", v.Total)
	r.println(b.String())
}

func (r *textRenderer) ShowError(message string) { r.println("Error: " + message) }

func (r *textRenderer) FormMessage(message string) { r.println(message) }

func (r *textRenderer) println(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, s)
}

func timelineMark(s tracking.EntryState) string {
	switch s {
	case tracking.EntryCompleted:
		return "[x]"
	case tracking.EntryActive:
		return "[>]"
	default:
		return "[ ]"
	}
}

// urlPrinter stands in for the page address bar.
type urlPrinter struct{ out io.Writer }

func (u urlPrinter) SetOrderParam(orderNumber string) {
	fmt.Fprintf(u.out, "?order=%s\n", orderNumber)
}
