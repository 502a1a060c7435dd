package notifications

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/money"
)

// Lagos is West Africa Time; the shop quotes dates in local time.
var lagos = time.FixedZone("WAT", 60*60)

func writeItems(b *strings.Builder, items []models.OrderItem) {
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s x %d @ %s = %s\n",
			i+1, item.Name, item.Quantity,
			money.FormatNaira(item.Price),
			money.FormatNaira(money.LineTotal(item.Price, item.Quantity)))
	}
}

// CustomerConfirmation renders the email sent to the buyer.
func CustomerConfirmation(order *models.Order, shopName string) (string, string) {
	subject := fmt.Sprintf("Order Confirmation - %s", order.OrderNumber)

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", order.CustomerName)
	fmt.Fprintf(&b, "Thank you for your order with %s.\n\n", shopName)
	fmt.Fprintf(&b, "Order Number: %s\n\n", order.OrderNumber)
	b.WriteString("Items:\n")
	writeItems(&b, order.Items)
	fmt.Fprintf(&b, "\nTotal: %s\n\n", money.FormatNaira(order.Total))
	b.WriteString("We will contact you shortly to confirm delivery details.\n")
	b.WriteString("Keep your order number to track your order on our website.\n\n")
	fmt.Fprintf(&b, "%s\n", shopName)
	return subject, b.String()
}

// AdminAlert renders the internal new-order email.
func AdminAlert(order *models.Order) (string, string) {
	subject := fmt.Sprintf("New Website Order - %s", order.OrderNumber)

	var b strings.Builder
	b.WriteString("ACTION REQUIRED: a new order was placed on the website.\n\n")
	fmt.Fprintf(&b, "Order Number: %s\n", order.OrderNumber)
	fmt.Fprintf(&b, "Placed: %s\n\n", order.CreatedAt.In(lagos).Format("02 Jan 2006 15:04"))
	b.WriteString("Customer:\n")
	fmt.Fprintf(&b, "Name: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "Phone: %s\n", order.CustomerPhone)
	if order.CustomerEmail != "" {
		fmt.Fprintf(&b, "Email: %s\n", order.CustomerEmail)
	}
	if order.CustomerAddress != "" {
		fmt.Fprintf(&b, "Address: %s\n", order.CustomerAddress)
	}
	if order.CustomerNotes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", order.CustomerNotes)
	}
	b.WriteString("\nItems:\n")
	writeItems(&b, order.Items)
	fmt.Fprintf(&b, "\nTotal: %s\n", money.FormatNaira(order.Total))
	return subject, b.String()
}

// StatusUpdateMessage renders the customer email for an admin status change.
func StatusUpdateMessage(order *models.Order, update models.StatusUpdate) (string, string) {
	subject := fmt.Sprintf("Order %s - %s", order.OrderNumber, update.Title)

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", order.CustomerName)
	fmt.Fprintf(&b, "Your order %s has been updated.\n\n", order.OrderNumber)
	fmt.Fprintf(&b, "Status: %s\n", update.Title)
	if update.Description != "" {
		fmt.Fprintf(&b, "%s\n", update.Description)
	}
	if order.TrackingNumber != nil && *order.TrackingNumber != "" {
		fmt.Fprintf(&b, "Tracking Number: %s\n", *order.TrackingNumber)
	}
	if order.EstimatedDelivery != nil {
		fmt.Fprintf(&b, "Estimated Delivery: %s\n", order.EstimatedDelivery.In(lagos).Format("02 Jan 2006"))
	}
	return subject, b.String()
}

// WhatsAppMessage is the order summary the customer sends to the shop.
func WhatsAppMessage(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛍️ *WEBSITE ORDER - %s*\n\n", order.OrderNumber)

	b.WriteString("*Customer Information:*\n")
	fmt.Fprintf(&b, "👤 Name: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "📞 Phone: %s\n", order.CustomerPhone)
	if order.CustomerAddress != "" {
		fmt.Fprintf(&b, "📍 Address: %s\n", order.CustomerAddress)
	}
	b.WriteString("\n")

	b.WriteString("*Order Items:*\n")
	for i, item := range order.Items {
		fmt.Fprintf(&b, "%d. *%dx* %s\n", i+1, item.Quantity, item.Name)
		fmt.Fprintf(&b, "   %s each = %s\n",
			money.FormatNaira(item.Price),
			money.FormatNaira(money.LineTotal(item.Price, item.Quantity)))
	}
	b.WriteString("\n")

	total := money.FormatNaira(order.Total)
	b.WriteString("*Order Summary:*\n")
	fmt.Fprintf(&b, "📦 Subtotal: %s\n", total)
	b.WriteString("🚚 Delivery: To be confirmed\n")
	fmt.Fprintf(&b, "💳 *TOTAL: %s*\n\n", total)

	if order.CustomerNotes != "" {
		fmt.Fprintf(&b, "*Customer Notes:*\n%s\n\n", order.CustomerNotes)
	}

	placed := order.CreatedAt
	if placed.IsZero() {
		placed = time.Now()
	}
	placed = placed.In(lagos)
	fmt.Fprintf(&b, "Order Date: %s\n", placed.Format("02/01/2006"))
	fmt.Fprintf(&b, "Order Time: %s\n\n", placed.Format("15:04:05"))
	b.WriteString("*ORDER CONFIRMED VIA WEBSITE*\n")
	b.WriteString("Please process this order and contact the customer.")
	return b.String()
}

// WhatsAppLink builds the wa.me deep link carrying the order summary.
func WhatsAppLink(order *models.Order, shopPhone string) string {
	phone := strings.TrimPrefix(strings.TrimSpace(shopPhone), "+")
	text := strings.ReplaceAll(url.QueryEscape(WhatsAppMessage(order)), "+", "%20")
	return "https://wa.me/" + phone + "?text=" + text
}
