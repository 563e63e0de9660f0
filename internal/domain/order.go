package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusCreated           OrderStatus = "created"
	OrderStatusInPreparation     OrderStatus = "in_preparation"
	OrderStatusWaitingForRetreat OrderStatus = "waiting_for_retreat"
	OrderStatusFinished          OrderStatus = "finished"
)

func (s OrderStatus) String() string {
	return string(s)
}

// Translate returns the Portuguese display label for a status. Unknown
// statuses fall back to the raw value; the client never transitions
// the status itself, so new backend statuses must not break display.
func (s OrderStatus) Translate() string {
	translations := map[OrderStatus]string{
		OrderStatusCreated:           "Criado",
		OrderStatusInPreparation:     "Em preparação",
		OrderStatusWaitingForRetreat: "Aguardando retirada",
		OrderStatusFinished:          "Finalizado",
	}
	if t, ok := translations[s]; ok {
		return t
	}
	return string(s)
}

type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	FullPrice decimal.Decimal `json:"full_price"`
	Status    OrderStatus     `json:"status"`
	UpdatedBy string          `json:"updated_by"`
	Items     []OrderItem     `json:"items,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderItem is one line of a placed order. It references the product
// by id only; the order header carries the computed total.
type OrderItem struct {
	OrderID   string `json:"order"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"product_quantity"`
}
