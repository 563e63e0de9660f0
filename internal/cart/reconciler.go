package cart

import (
	"context"
	"log"
	"time"

	"github.com/MouraVocal/vendas-pascoa/internal/catalog"
	"github.com/MouraVocal/vendas-pascoa/internal/feed"
)

// Reconcile subscribes the store to the mirror's product changes so a
// line's embedded snapshot never drifts from the current catalog data.
// Remote changes win for product fields; the user's quantity is never
// overwritten. Deletes are ignored: catalog changes never remove lines.
func Reconcile(store *Store, mirror *catalog.Mirror) {
	mirror.OnChange(func(ch catalog.Change) {
		if ch.Type == feed.EventDelete {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := store.RefreshProduct(ctx, ch.Product); err != nil {
			log.Printf("failed to reconcile cart line for product %s: %v", ch.ProductID, err)
		}
	})
}
