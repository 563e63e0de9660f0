package cart

import (
	"context"
	"errors"

	"github.com/MouraVocal/vendas-pascoa/internal/domain"
)

// Saver persists the full cart line set. The store saves after every
// mutation and loads once on startup.
type Saver interface {
	Load(ctx context.Context) ([]domain.CartLine, error)
	Save(ctx context.Context, lines []domain.CartLine) error
}

var ErrNoSavedCart = errors.New("no saved cart")
