package repository

import (
	"context"
	"time"

	"suryawash/internal/domain"

	"gorm.io/gorm"
)

type AccountRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	now := r.now()
	a.CreatedAt = now
	a.UpdatedAt = now
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *AccountRepository) GetByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	return r.first(ctx, "phone = ?", phone)
}

func (r *AccountRepository) first(ctx context.Context, query string, arg string) (*domain.Account, error) {
	var a domain.Account
	if err := r.db.WithContext(ctx).Where(query, arg).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// RecordFailedLogin increments the counter and locks the account once it reaches maxAttempts.
// It returns the new attempt count.
func (r *AccountRepository) RecordFailedLogin(ctx context.Context, id string, maxAttempts int, lockFor time.Duration) (int, error) {
	var attempts int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a domain.Account
		if err := tx.Where("id = ?", id).First(&a).Error; err != nil {
			return err
		}
		attempts = a.FailedLoginAttempts + 1
		now := r.now()
		fields := map[string]any{"failed_login_attempts": attempts, "updated_at": now}
		if attempts >= maxAttempts {
			fields["locked_until"] = now.Add(lockFor)
			fields["failed_login_attempts"] = 0
		}
		return tx.Model(&domain.Account{}).Where("id = ?", id).Updates(fields).Error
	})
	return attempts, err
}

func (r *AccountRepository) ResetFailedLogins(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"failed_login_attempts": 0,
			"locked_until":          nil,
			"updated_at":            r.now(),
		}).Error
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{"password_hash": hash, "updated_at": r.now()})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the account and its sessions.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", id).Delete(&domain.Session{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Account{}).Error
	})
}
