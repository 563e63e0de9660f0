// Package storefront wires the catalog mirror, cart, checkout flow and
// order history into one shopping session. Everything is an explicit
// service object passed by reference; there are no package-level
// singletons.
package storefront

import (
	"context"
	"fmt"

	"github.com/MouraVocal/vendas-pascoa/internal/backend"
	"github.com/MouraVocal/vendas-pascoa/internal/cart"
	"github.com/MouraVocal/vendas-pascoa/internal/catalog"
	"github.com/MouraVocal/vendas-pascoa/internal/checkout"
	"github.com/MouraVocal/vendas-pascoa/internal/domain"
	"github.com/MouraVocal/vendas-pascoa/internal/feed"
	"github.com/MouraVocal/vendas-pascoa/internal/orders"
)

type Deps struct {
	Records backend.RecordStore
	Auth    backend.Authenticator
	Feed    feed.Source
	Saver   cart.Saver
}

// Session is one user's shopping session.
type Session struct {
	Catalog  *catalog.Mirror
	Cart     *cart.Store
	Checkout *checkout.Flow
	auth     backend.Authenticator
	orders   *orders.Service
}

// New builds a session. A failed catalog load is terminal: no session
// is returned.
func New(ctx context.Context, deps Deps) (*Session, error) {
	mirror, err := catalog.NewMirror(ctx, deps.Records, deps.Feed)
	if err != nil {
		return nil, fmt.Errorf("start catalog mirror: %w", err)
	}

	store := cart.NewStore(ctx, deps.Saver)
	cart.Reconcile(store, mirror)

	return &Session{
		Catalog:  mirror,
		Cart:     store,
		Checkout: checkout.NewFlow(deps.Records, deps.Auth, store),
		auth:     deps.Auth,
		orders:   orders.NewService(deps.Records),
	}, nil
}

// SignIn authenticates and, when an order submission was suspended
// waiting for it, resumes that submission automatically.
func (s *Session) SignIn(ctx context.Context, email, password string) error {
	session, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	return s.resumeCheckout(ctx, session)
}

// SignUp registers a new account and resumes a suspended submission
// the same way SignIn does.
func (s *Session) SignUp(ctx context.Context, email, password, displayName, phone string) error {
	session, err := s.auth.SignUp(ctx, email, password, displayName, phone)
	if err != nil {
		return err
	}
	return s.resumeCheckout(ctx, session)
}

func (s *Session) resumeCheckout(ctx context.Context, session *domain.Session) error {
	if s.Checkout.State() != checkout.StateAwaitingAuth {
		return nil
	}
	if _, err := s.Checkout.Resume(ctx, session); err != nil {
		return fmt.Errorf("resume order submission: %w", err)
	}
	return nil
}

// OrderHistory lists the signed-in user's orders. Navigating to the
// history also acknowledges a pending order confirmation, which
// clears the cart.
func (s *Session) OrderHistory(ctx context.Context) ([]domain.Order, error) {
	session := s.auth.CurrentSession()
	if session == nil {
		return nil, checkout.ErrAuthRequired
	}

	if err := s.Checkout.Acknowledge(ctx); err != nil {
		return nil, err
	}

	return s.orders.List(ctx, session.UserID)
}

// Close releases the catalog subscriptions.
func (s *Session) Close() error {
	return s.Catalog.Close()
}
