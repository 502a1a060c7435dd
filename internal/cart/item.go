package cart

import (
	"errors"
	"strings"

	"github.com/collabinvest/cil-storefront/pkg/money"
)

var ErrInvalidProduct = errors.New("invalid product: id, name and a positive price are required")

// Item is one cart line as kept in client storage.
type Item struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Price    money.Amount `json:"price"`
	Image    string       `json:"image,omitempty"`
	Quantity int          `json:"quantity"`
}

// Product is what the catalogue hands to Add.
type Product struct {
	ID    string
	Name  string
	Price money.Amount
	Image string
}

func (p Product) validate() error {
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" || !p.Price.IsPositive() {
		return ErrInvalidProduct
	}
	return nil
}

func (i Item) LineTotal() money.Amount {
	return money.LineTotal(i.Price, i.Quantity)
}
