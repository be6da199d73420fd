package payment

import (
	"context"
	"time"

	"suryawash/internal/domain"
)

type itemReader interface {
	GetItem(ctx context.Context, t domain.ItemType, id string) (*domain.CatalogItem, error)
}

type transactionRepo interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	MarkSucceeded(ctx context.Context, id, gatewayRef string, activated bool) error
	MarkFailed(ctx context.Context, id, reason string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
}

type membershipWriter interface {
	ActivateMembership(ctx context.Context, id, planID string) (time.Time, error)
}

// Gateway charges a pending transaction and returns the processor's reference.
type Gateway interface {
	Charge(ctx context.Context, tx *domain.Transaction) (string, error)
}
