// Package catalog keeps a client-local mirror of the remote product
// catalog and site settings, current via the change feed.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/MouraVocal/vendas-pascoa/internal/domain"
	"github.com/MouraVocal/vendas-pascoa/internal/feed"
	"golang.org/x/sync/singleflight"
)

const (
	TableProducts     = "products"
	TableSiteSettings = "site_settings"
)

// Fetcher is the slice of the backend the mirror reads from.
type Fetcher interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	FetchSiteSettings(ctx context.Context) (domain.SiteSettings, error)
}

// Change describes one observed product change, fanned out to
// registered listeners after the mirror has applied it.
type Change struct {
	Type      feed.EventType
	ProductID string
	Product   domain.Product // zero value for deletes
}

// Mirror holds the in-memory product set and site settings. Feed
// events apply as upserts keyed by product id, so at-least-once
// delivery is idempotent. Listeners run on the feed goroutine and
// must not block.
type Mirror struct {
	fetcher Fetcher

	mu        sync.RWMutex
	products  []domain.Product
	settings  domain.SiteSettings
	listeners []func(Change)

	subs []feed.Subscription
	sfg  singleflight.Group // dedups concurrent refreshes
}

// NewMirror fetches the full catalog and settings, then opens one
// subscription per watched table. A failed initial fetch is terminal:
// no mirror is returned and nothing is subscribed.
func NewMirror(ctx context.Context, fetcher Fetcher, source feed.Source) (*Mirror, error) {
	products, err := fetcher.FetchProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial product fetch failed: %w", err)
	}

	settings, err := fetcher.FetchSiteSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial site settings fetch failed: %w", err)
	}

	m := &Mirror{
		fetcher:  fetcher,
		products: products,
		settings: settings,
	}

	productSub, err := source.Subscribe(ctx, TableProducts, nil, feed.Handlers{
		OnInsert: m.applyProductUpsert(feed.EventInsert),
		OnUpdate: m.applyProductUpsert(feed.EventUpdate),
		OnDelete: m.applyProductDelete,
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to products failed: %w", err)
	}
	m.subs = append(m.subs, productSub)

	settingsSub, err := source.Subscribe(ctx, TableSiteSettings, nil, feed.Handlers{
		OnInsert: m.applySettings,
		OnUpdate: m.applySettings,
	})
	if err != nil {
		productSub.Close()
		return nil, fmt.Errorf("subscribe to site settings failed: %w", err)
	}
	m.subs = append(m.subs, settingsSub)

	return m, nil
}

// Products returns a copy of the mirrored product set, newest first.
func (m *Mirror) Products() []domain.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out
}

// HighlightedProducts returns the products flagged for the home page.
func (m *Mirror) HighlightedProducts() []domain.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Product
	for _, p := range m.products {
		if p.IsHighlighted {
			out = append(out, p)
		}
	}
	return out
}

// Product looks a product up by id.
func (m *Mirror) Product(id string) (domain.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (m *Mirror) Settings() domain.SiteSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// OnChange registers a listener for product changes. Used by the cart
// reconciler and by live views.
func (m *Mirror) OnChange(fn func(Change)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Refresh refetches the full product set. Concurrent callers share a
// single fetch.
func (m *Mirror) Refresh(ctx context.Context) error {
	_, err, _ := m.sfg.Do(TableProducts, func() (interface{}, error) {
		products, err := m.fetcher.FetchProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("product refresh failed: %w", err)
		}

		m.mu.Lock()
		m.products = products
		m.mu.Unlock()
		return nil, nil
	})
	return err
}

// Close releases every feed subscription. The mirror keeps serving
// its last known data afterwards but no longer receives updates.
func (m *Mirror) Close() error {
	var firstErr error
	for _, sub := range m.subs {
		if err := sub.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.subs = nil
	return firstErr
}

func (m *Mirror) applyProductUpsert(typ feed.EventType) func(json.RawMessage) {
	return func(record json.RawMessage) {
		var p domain.Product
		if err := json.Unmarshal(record, &p); err != nil {
			log.Printf("failed to parse product event: %v", err)
			return
		}

		m.mu.Lock()
		replaced := false
		for i := range m.products {
			if m.products[i].ID == p.ID {
				m.products[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			m.products = append(m.products, p)
		}
		listeners := append(([]func(Change))(nil), m.listeners...)
		m.mu.Unlock()

		for _, fn := range listeners {
			fn(Change{Type: typ, ProductID: p.ID, Product: p})
		}
	}
}

func (m *Mirror) applyProductDelete(recordID string) {
	m.mu.Lock()
	for i := range m.products {
		if m.products[i].ID == recordID {
			m.products = append(m.products[:i], m.products[i+1:]...)
			break
		}
	}
	listeners := append(([]func(Change))(nil), m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(Change{Type: feed.EventDelete, ProductID: recordID})
	}
}

func (m *Mirror) applySettings(record json.RawMessage) {
	var s domain.SiteSettings
	if err := json.Unmarshal(record, &s); err != nil {
		log.Printf("failed to parse site settings event: %v", err)
		return
	}

	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()
}
