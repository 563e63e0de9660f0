// Package checkout turns a cart snapshot into a durable order via a
// two-step write: header first, then line items.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/MouraVocal/vendas-pascoa/internal/backend"
	"github.com/MouraVocal/vendas-pascoa/internal/cart"
	"github.com/MouraVocal/vendas-pascoa/internal/domain"
	"github.com/shopspring/decimal"
)

type State string

const (
	StateIdle         State = "IDLE"
	StateAwaitingAuth State = "AWAITING_AUTH"
	StateConfirmed    State = "CONFIRMED"
)

var (
	ErrEmptyCart    = errors.New("cart is empty, nothing to submit")
	ErrAuthRequired = errors.New("sign in required to place an order")
	ErrNotAwaiting  = errors.New("no order submission is awaiting authentication")
)

// Confirmation is an immutable snapshot of a submitted order, shown to
// the user independent of any further cart mutation.
type Confirmation struct {
	OrderID   string
	Lines     []domain.CartLine
	Total     decimal.Decimal
	CreatedAt time.Time
}

// Flow is the linear order submission state machine. There are no
// retries: every failure surfaces to the caller and leaves the cart
// untouched. If the header write succeeds and the line-item write
// fails, the orphaned header stays behind; the backend offers nothing
// transactional across the two calls.
type Flow struct {
	records backend.RecordStore
	auth    backend.Authenticator
	store   *cart.Store

	mu           sync.Mutex
	state        State
	confirmation *Confirmation
}

func NewFlow(records backend.RecordStore, auth backend.Authenticator, store *cart.Store) *Flow {
	return &Flow{
		records: records,
		auth:    auth,
		store:   store,
		state:   StateIdle,
	}
}

// Submit places the current cart as an order. An unauthenticated
// caller suspends the flow instead of failing it: Submit returns
// ErrAuthRequired and the flow waits in StateAwaitingAuth for Resume.
func (f *Flow) Submit(ctx context.Context) (*Confirmation, error) {
	if f.store.ItemCount() == 0 {
		return nil, ErrEmptyCart
	}

	session := f.auth.CurrentSession()
	if session == nil {
		f.mu.Lock()
		f.state = StateAwaitingAuth
		f.mu.Unlock()
		return nil, ErrAuthRequired
	}

	return f.submit(ctx, session)
}

// Resume completes a submission suspended for authentication, using
// the freshly obtained identity.
func (f *Flow) Resume(ctx context.Context, session *domain.Session) (*Confirmation, error) {
	f.mu.Lock()
	if f.state != StateAwaitingAuth {
		f.mu.Unlock()
		return nil, ErrNotAwaiting
	}
	f.mu.Unlock()

	if f.store.ItemCount() == 0 {
		f.mu.Lock()
		f.state = StateIdle
		f.mu.Unlock()
		return nil, ErrEmptyCart
	}

	return f.submit(ctx, session)
}

// Acknowledge clears the cart after the user has seen the
// confirmation. The cart is deliberately kept intact until then so a
// failed submission loses nothing.
func (f *Flow) Acknowledge(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateConfirmed {
		f.mu.Unlock()
		return nil
	}
	f.state = StateIdle
	f.confirmation = nil
	f.mu.Unlock()

	if err := f.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart after order: %w", err)
	}
	return nil
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Confirmation returns the pending confirmation, nil once acknowledged.
func (f *Flow) Confirmation() *Confirmation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmation
}

func (f *Flow) submit(ctx context.Context, session *domain.Session) (*Confirmation, error) {
	lines := f.store.Lines()
	total := f.store.Total()

	header := domain.Order{
		UserID:    session.UserID,
		FullPrice: total,
		UpdatedBy: session.UserID,
	}

	created, err := f.records.CreateOrder(ctx, header)
	if err != nil {
		f.setIdle()
		return nil, fmt.Errorf("create order failed: %w", err)
	}

	items := make([]domain.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = domain.OrderItem{
			OrderID:   created.ID,
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		}
	}

	if err := f.records.AddOrderItems(ctx, created.ID, items); err != nil {
		log.Printf("order %s has a header but no items: %v", created.ID, err)
		f.setIdle()
		return nil, fmt.Errorf("write order items failed: %w", err)
	}

	conf := &Confirmation{
		OrderID:   created.ID,
		Lines:     lines,
		Total:     total,
		CreatedAt: created.CreatedAt,
	}

	f.mu.Lock()
	f.state = StateConfirmed
	f.confirmation = conf
	f.mu.Unlock()

	return conf, nil
}

func (f *Flow) setIdle() {
	f.mu.Lock()
	f.state = StateIdle
	f.mu.Unlock()
}
