package payment

import (
	"strconv"

	"suryawash/internal/domain"
)

// Summary is the order card on the checkout page.
type Summary struct {
	Type        domain.ItemType `json:"type"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	PriceLabel  string          `json:"price_label"`
	Badge       string          `json:"badge"`
}

type PayRequest struct {
	Type string `json:"type" validate:"required"`
	ID   string `json:"id" validate:"required"`
	// Activate writes the item onto the user's membership. Defaults to true for plans.
	Activate *bool `json:"activate"`
}

type PayResult struct {
	Transaction *domain.Transaction `json:"transaction"`
	// Replayed is set when the idempotency key matched an earlier payment.
	Replayed bool `json:"replayed"`
}

func formatPrice(p float64) string {
	return "₹" + strconv.FormatFloat(p, 'f', -1, 64)
}
