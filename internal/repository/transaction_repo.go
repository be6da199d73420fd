package repository

import (
	"context"
	"time"

	"suryawash/internal/domain"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores a pending transaction. A duplicate idempotency key surfaces as a
// unique violation (see database.IsUniqueViolation).
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	now := r.now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = domain.TransactionPending
	}
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkSucceeded completes a pending transaction. Only pending rows move.
func (r *TransactionRepository) MarkSucceeded(ctx context.Context, id, gatewayRef string, activated bool) error {
	now := r.now()
	return r.finish(ctx, id, map[string]any{
		"status":       domain.TransactionSucceeded,
		"gateway_ref":  gatewayRef,
		"activated":    activated,
		"completed_at": now,
		"updated_at":   now,
	})
}

func (r *TransactionRepository) MarkFailed(ctx context.Context, id, reason string) error {
	now := r.now()
	return r.finish(ctx, id, map[string]any{
		"status":         domain.TransactionFailed,
		"failure_reason": reason,
		"completed_at":   now,
		"updated_at":     now,
	})
}

func (r *TransactionRepository) finish(ctx context.Context, id string, fields map[string]any) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("id = ? AND status = ?", id, domain.TransactionPending).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
