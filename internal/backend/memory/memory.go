// Package memory is an in-process backend: record store, authenticator
// and change feed in one. It backs the demo binary when no external
// services are configured, and gives tests a fake event source.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/MouraVocal/vendas-pascoa/internal/backend"
	"github.com/MouraVocal/vendas-pascoa/internal/domain"
	"github.com/MouraVocal/vendas-pascoa/internal/feed"
	"github.com/google/uuid"
)

type account struct {
	password string
	session  domain.Session
}

type subscriber struct {
	id       int
	table    string
	filter   *feed.Filter
	handlers feed.Handlers
}

type Backend struct {
	mu          sync.Mutex
	products    map[string]domain.Product
	settings    *domain.SiteSettings
	orders      map[string]domain.Order
	orderItems  map[string][]domain.OrderItem
	accounts    map[string]account
	current     *domain.Session
	subscribers map[int]*subscriber
	nextSub     int
}

func New() *Backend {
	return &Backend{
		products:    make(map[string]domain.Product),
		orders:      make(map[string]domain.Order),
		orderItems:  make(map[string][]domain.OrderItem),
		accounts:    make(map[string]account),
		subscribers: make(map[int]*subscriber),
	}
}

var (
	_ backend.RecordStore   = (*Backend)(nil)
	_ backend.Authenticator = (*Backend)(nil)
	_ feed.Source           = (*Backend)(nil)
)

// SeedProduct inserts a product without emitting a feed event; use it
// to set up state that predates any subscription.
func (b *Backend) SeedProduct(p domain.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.products[p.ID] = p
}

func (b *Backend) SeedSettings(s domain.SiteSettings) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings = &s
}

func (b *Backend) FetchProducts(_ context.Context) ([]domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Product, 0, len(b.products))
	for _, p := range b.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (b *Backend) FetchHighlightedProducts(ctx context.Context) ([]domain.Product, error) {
	all, err := b.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}

	var out []domain.Product
	for _, p := range all {
		if p.IsHighlighted {
			out = append(out, p)
		}
	}
	return out, nil
}

func (b *Backend) FetchSiteSettings(_ context.Context) (domain.SiteSettings, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.settings == nil {
		return domain.SiteSettings{}, backend.ErrSettingsNotFound
	}
	return *b.settings, nil
}

func (b *Backend) CreateOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	order.ID = uuid.NewString()
	order.Status = domain.OrderStatusCreated
	order.CreatedAt = now
	order.UpdatedAt = now
	b.orders[order.ID] = order
	return order, nil
}

func (b *Backend) AddOrderItems(_ context.Context, orderID string, items []domain.OrderItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.orders[orderID]; !ok {
		return backend.ErrOrderNotFound
	}
	b.orderItems[orderID] = append(b.orderItems[orderID], items...)
	return nil
}

func (b *Backend) ListOrdersByUser(_ context.Context, userID string) ([]domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []domain.Order
	for id, o := range b.orders {
		if o.UserID != userID {
			continue
		}
		o.Items = append([]domain.OrderItem(nil), b.orderItems[id]...)
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (b *Backend) SignIn(_ context.Context, email, password string) (*domain.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[email]
	if !ok || acc.password != password {
		return nil, backend.ErrInvalidCredentials
	}

	session := acc.session
	b.current = &session
	return &session, nil
}

func (b *Backend) SignUp(_ context.Context, email, password, displayName, phone string) (*domain.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.accounts[email]; ok {
		return nil, backend.ErrEmailTaken
	}

	session := domain.Session{
		UserID:      uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
		Phone:       phone,
	}
	b.accounts[email] = account{password: password, session: session}
	b.current = &session
	return &session, nil
}

func (b *Backend) CurrentSession() *domain.Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return nil
	}
	session := *b.current
	return &session
}

func (b *Backend) SignOut() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
}

func (b *Backend) Subscribe(_ context.Context, table string, filter *feed.Filter, h feed.Handlers) (feed.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSub++
	sub := &subscriber{id: b.nextSub, table: table, filter: filter, handlers: h}
	b.subscribers[sub.id] = sub
	return &memorySubscription{backend: b, id: sub.id}, nil
}

// Publish applies a change to the record set and delivers it to every
// matching subscriber, synchronously.
func (b *Backend) Publish(ev feed.Event) {
	b.mu.Lock()
	if ev.Table == "products" {
		switch ev.Type {
		case feed.EventInsert, feed.EventUpdate:
			var p domain.Product
			if err := json.Unmarshal(ev.Record, &p); err == nil {
				b.products[p.ID] = p
			}
		case feed.EventDelete:
			delete(b.products, ev.RecordID)
		}
	}
	subs := make([]*subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		if sub.table == ev.Table {
			subs = append(subs, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range subs {
		feed.Deliver(sub.handlers, sub.filter, ev)
	}
}

// PublishProduct marshals the product and publishes it as an insert or
// update event.
func (b *Backend) PublishProduct(typ feed.EventType, p domain.Product) {
	record, err := json.Marshal(p)
	if err != nil {
		return
	}
	b.Publish(feed.Event{Type: typ, Table: "products", RecordID: p.ID, Record: record})
}

type memorySubscription struct {
	backend *Backend
	id      int
}

func (m *memorySubscription) Close() error {
	m.backend.mu.Lock()
	defer m.backend.mu.Unlock()
	delete(m.backend.subscribers, m.id)
	return nil
}
