package domain

import "github.com/shopspring/decimal"

// CartLine pairs a product snapshot with the quantity the user chose.
// Quantity is always >= 1; a line that would drop below 1 is removed
// from the cart instead.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price times quantity, recomputed on every call.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
