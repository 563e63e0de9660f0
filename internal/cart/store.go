// Package cart holds the working cart: product snapshots paired with
// user-chosen quantities, persisted after every mutation.
package cart

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/MouraVocal/vendas-pascoa/internal/domain"
	"github.com/shopspring/decimal"
)

// Store owns the cart lines. Lines are keyed by product id; adding a
// product already in the cart increments its quantity instead of
// creating a second line. Totals are always recomputed from the
// current lines, never cached.
type Store struct {
	mu    sync.Mutex
	lines []domain.CartLine
	saver Saver
}

// NewStore loads the previously saved line set if there is one. A
// missing cart starts empty; a corrupt one is discarded with a log
// line rather than failing the whole session.
func NewStore(ctx context.Context, saver Saver) *Store {
	s := &Store{saver: saver}

	lines, err := saver.Load(ctx)
	switch {
	case err == nil:
		s.lines = lines
	case errors.Is(err, ErrNoSavedCart):
		// first visit, nothing to restore
	default:
		log.Printf("discarding saved cart: %v", err)
	}

	return s
}

// AddItem inserts a new line with quantity 1, or bumps the existing
// line's quantity by 1.
func (s *Store) AddItem(ctx context.Context, product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.lines {
		if s.lines[i].Product.ID == product.ID {
			s.lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.lines = append(s.lines, domain.CartLine{Product: product, Quantity: 1})
	}

	return s.persist(ctx)
}

// RemoveItem deletes the line for the product. Removing a product that
// is not in the cart is a no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return s.persist(ctx)
		}
	}
	return nil
}

// UpdateQuantity sets the line's quantity to exactly quantity. A value
// below 1 removes the line instead.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return s.RemoveItem(ctx, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			s.lines[i].Quantity = quantity
			return s.persist(ctx)
		}
	}
	return nil
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return s.persist(ctx)
}

// RefreshProduct replaces the product snapshot on the matching line,
// leaving the quantity untouched. It never creates or deletes lines;
// refreshing a product with no line is a no-op.
func (s *Store) RefreshProduct(ctx context.Context, product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Product.ID == product.ID {
			s.lines[i].Product = product
			return s.persist(ctx)
		}
	}
	return nil
}

// Lines returns a copy of the current line set.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total is the sum of price times quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities over all lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}

// persist serializes the full line set. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	if err := s.saver.Save(ctx, s.lines); err != nil {
		log.Printf("failed to save cart: %v", err)
		return err
	}
	return nil
}
