package tracking

import (
	"strconv"
	"strings"
	"time"

	"github.com/collabinvest/cil-storefront/internal/orders"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	"github.com/collabinvest/cil-storefront/pkg/money"
)

type EntryState string

const (
	EntryCompleted EntryState = "completed"
	EntryActive    EntryState = "active"
	EntryPending   EntryState = "pending"
)

type TimelineEntry struct {
	Title       string
	Description string
	Date        time.Time
	State       EntryState
}

type ItemLine struct {
	Position  int
	Name      string
	Quantity  int
	LineTotal string
}

// View is everything the tracking page shows for one order.
type View struct {
	Order       *orders.RedactedOrder
	StatusLabel string
	Progress    int
	Timeline    []TimelineEntry
	Items       []ItemLine
	Total       string
}

var progressByStatus = map[enums.OrderStatus]int{
	enums.OrderStatusPending:    25,
	enums.OrderStatusProcessing: 50,
	enums.OrderStatusShipped:    75,
	enums.OrderStatusDelivered:  100,
	enums.OrderStatusCancelled:  0,
}

// Progress maps a status to the progress bar width in percent.
func Progress(status enums.OrderStatus) int {
	return progressByStatus[enums.OrderStatus(strings.ToLower(string(status)))]
}

// Timeline lists updates oldest first. The newest entry is active. With no
// updates on record a single placed entry is derived from createdAt.
func Timeline(order *orders.RedactedOrder) []TimelineEntry {
	if order == nil {
		return nil
	}
	if len(order.StatusUpdates) == 0 {
		return []TimelineEntry{{
			Title:       "Order Placed",
			Description: "Order received",
			Date:        order.CreatedAt,
			State:       EntryActive,
		}}
	}

	entries := make([]TimelineEntry, 0, len(order.StatusUpdates))
	last := len(order.StatusUpdates) - 1
	for i, u := range order.StatusUpdates {
		title := u.Title
		if title == "" {
			title = "Update"
		}
		state := EntryPending
		switch {
		case i == last:
			state = EntryActive
		case u.Completed:
			state = EntryCompleted
		}
		entries = append(entries, TimelineEntry{
			Title:       title,
			Description: u.Description,
			Date:        u.Date,
			State:       state,
		})
	}
	return entries
}

func statusLabel(status enums.OrderStatus) string {
	s := strings.ToLower(string(status))
	if _, ok := progressByStatus[enums.OrderStatus(s)]; !ok {
		s = string(enums.OrderStatusPending)
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// BuildView assembles the page model for order.
func BuildView(order *orders.RedactedOrder) View {
	items := make([]ItemLine, 0, len(order.Items))
	for i, it := range order.Items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		name := it.Name
		if name == "" {
			name = "Item " + strconv.Itoa(i+1)
		}
		items = append(items, ItemLine{
			Position:  i + 1,
			Name:      name,
			Quantity:  qty,
			LineTotal: money.FormatNaira(money.LineTotal(it.Price, qty)),
		})
	}
	return View{
		Order:       order,
		StatusLabel: statusLabel(order.Status),
		Progress:    Progress(order.Status),
		Timeline:    Timeline(order),
		Items:       items,
		Total:       money.FormatNaira(order.Total),
	}
}
