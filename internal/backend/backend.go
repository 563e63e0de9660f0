// Package backend defines the client's contract with the hosted data
// service. The service's internals are out of scope; everything the
// storefront needs from it is expressed by these interfaces.
package backend

import (
	"context"
	"errors"

	"github.com/MouraVocal/vendas-pascoa/internal/domain"
)

var (
	ErrSettingsNotFound   = errors.New("site settings not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// RecordStore is the durable record storage side of the backend.
// Every call is a single remote operation that fails atomically;
// there is no multi-call transaction.
type RecordStore interface {
	// FetchProducts returns all products, newest first.
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	// FetchHighlightedProducts returns highlighted products, newest first.
	FetchHighlightedProducts(ctx context.Context) ([]domain.Product, error)
	FetchSiteSettings(ctx context.Context) (domain.SiteSettings, error)
	// CreateOrder writes an order header and returns it with the
	// generated id and timestamps filled in.
	CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	// AddOrderItems writes the line items for an already created header.
	AddOrderItems(ctx context.Context, orderID string, items []domain.OrderItem) error
	// ListOrdersByUser returns a user's orders with items, newest first.
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

// Authenticator is the credential-based session issuance side of the
// backend. CurrentSession returns nil when nobody is signed in.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password, displayName, phone string) (*domain.Session, error)
	CurrentSession() *domain.Session
	SignOut()
}
