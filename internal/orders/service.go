// Package orders reads a user's order history. Status transitions
// happen backend-side; the client only displays them.
package orders

import (
	"context"
	"fmt"

	"github.com/MouraVocal/vendas-pascoa/internal/backend"
	"github.com/MouraVocal/vendas-pascoa/internal/domain"
)

type Service struct {
	records backend.RecordStore
}

func NewService(records backend.RecordStore) *Service {
	return &Service{records: records}
}

// List returns the user's orders with their items, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.records.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders failed: %w", err)
	}
	return orders, nil
}
