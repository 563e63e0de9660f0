package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/MouraVocal/vendas-pascoa/internal/domain"
	"github.com/MouraVocal/vendas-pascoa/internal/feed"
)

// ProductWatch keeps a single product live-updated independent of the
// full mirror, for detail views. Any change event for the product
// replaces the local state wholesale.
type ProductWatch struct {
	mu      sync.RWMutex
	product domain.Product
	deleted bool
	sub     feed.Subscription
}

// WatchProduct subscribes to change events filtered to one product id,
// starting from the given snapshot.
func WatchProduct(ctx context.Context, source feed.Source, product domain.Product) (*ProductWatch, error) {
	w := &ProductWatch{product: product}

	sub, err := source.Subscribe(ctx, TableProducts, &feed.Filter{RecordID: product.ID}, feed.Handlers{
		OnInsert: w.replace,
		OnUpdate: w.replace,
		OnDelete: func(string) {
			w.mu.Lock()
			w.deleted = true
			w.mu.Unlock()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("watch product %s failed: %w", product.ID, err)
	}

	w.sub = sub
	return w, nil
}

// Current returns the latest product state and whether the product
// still exists remotely.
func (w *ProductWatch) Current() (domain.Product, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.product, !w.deleted
}

func (w *ProductWatch) Close() error {
	return w.sub.Close()
}

func (w *ProductWatch) replace(record json.RawMessage) {
	var p domain.Product
	if err := json.Unmarshal(record, &p); err != nil {
		log.Printf("failed to parse watched product event: %v", err)
		return
	}

	w.mu.Lock()
	w.product = p
	w.deleted = false
	w.mu.Unlock()
}
