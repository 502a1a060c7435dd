package main

import (
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/collabinvest/cil-storefront/internal/cart"
	"github.com/collabinvest/cil-storefront/pkg/money"
)

func (a *app) cart(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("cart: expected list, add, remove, qty or clear")
	}
	store, err := cart.NewStore(a.state)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("cart "+args[0], flag.ContinueOnError)
	fs.SetOutput(a.out)
	id := fs.String("id", "", "product id")
	name := fs.String("name", "", "product name (add)")
	price := fs.String("price", "", "unit price in Naira (add)")
	image := fs.String("image", "", "product image url (add)")
	qty := fs.Int("n", 1, "quantity (qty)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch args[0] {
	case "list", "ls":
	case "add":
		amount, err := decimal.NewFromString(*price)
		if err != nil {
			return fmt.Errorf("cart add: invalid price %q", *price)
		}
		if err := store.Add(cart.Product{ID: *id, Name: *name, Price: amount, Image: *image}); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s added to cart!\n", *name)
	case "remove", "rm":
		if err := store.Remove(*id); err != nil {
			return err
		}
	case "qty":
		if err := store.UpdateQuantity(*id, *qty); err != nil {
			return err
		}
	case "clear":
		if err := store.Clear(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cart: unknown action %q", args[0])
	}
	return a.printCart(store)
}

func (a *app) printCart(store *cart.Store) error {
	items := store.Items()
	if len(items) == 0 {
		_, err := fmt.Fprintln(a.out, "Your cart is empty")
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tQTY\tPRICE\tTOTAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", it.ID, it.Name, it.Quantity, money.FormatNaira(it.Price), money.FormatNaira(it.LineTotal()))
	}
	fmt.Fprintf(tw, "\t\t%d\t\t%s\n", store.Count(), money.FormatNaira(store.Total()))
	return tw.Flush()
}
