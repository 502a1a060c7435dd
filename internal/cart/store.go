package cart

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/collabinvest/cil-storefront/internal/clientstore"
	"github.com/collabinvest/cil-storefront/pkg/money"
)

// ChangeFunc receives the badge count after every mutation.
type ChangeFunc func(count int)

// Store keeps the cart as a JSON array under the "cart" key. Every call reads
// storage afresh, so two stores sharing a backend see each other's writes and
// the last writer wins.
type Store struct {
	storage clientstore.Storage

	mu       sync.Mutex
	onChange ChangeFunc
}

func NewStore(storage clientstore.Storage) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	return &Store{storage: storage}, nil
}

// OnChange registers the single count listener, replacing any previous one.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Items returns the stored lines. Missing or unreadable data is an empty cart.
func (s *Store) Items() []Item {
	raw, ok := s.storage.Get(clientstore.KeyCart)
	if !ok || raw == "" {
		return []Item{}
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []Item{}
	}
	return items
}

func (s *Store) Add(p Product) error {
	if err := p.validate(); err != nil {
		return err
	}
	return s.mutate(func(items []Item) []Item {
		for i := range items {
			if items[i].ID == p.ID {
				items[i].Quantity++
				return items
			}
		}
		return append(items, Item{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Image:    p.Image,
			Quantity: 1,
		})
	})
}

func (s *Store) Remove(id string) error {
	return s.mutate(func(items []Item) []Item {
		out := items[:0]
		for _, it := range items {
			if it.ID != id {
				out = append(out, it)
			}
		}
		return out
	})
}

// UpdateQuantity sets the quantity for id. Anything below one removes the line.
func (s *Store) UpdateQuantity(id string, qty int) error {
	if qty < 1 {
		return s.Remove(id)
	}
	return s.mutate(func(items []Item) []Item {
		for i := range items {
			if items[i].ID == id {
				items[i].Quantity = qty
			}
		}
		return items
	})
}

func (s *Store) Clear() error {
	if err := s.storage.Remove(clientstore.KeyCart); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.notify(0)
	return nil
}

func (s *Store) Total() money.Amount {
	total := money.Zero()
	for _, it := range s.Items() {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Count is the number shown on the cart badge.
func (s *Store) Count() int {
	return countOf(s.Items())
}

func (s *Store) mutate(fn func([]Item) []Item) error {
	items := fn(s.Items())
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Set(clientstore.KeyCart, string(raw)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	s.notify(countOf(items))
	return nil
}

func (s *Store) notify(count int) {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(count)
	}
}

func countOf(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
