package repository

import (
	"context"
	"time"

	"suryawash/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Exists reports whether userID has an admin row.
func (r *AdminRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Admin{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

func (r *AdminRepository) Get(ctx context.Context, userID string) (*domain.Admin, error) {
	var a domain.Admin
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Grant is idempotent; an existing row is left untouched.
func (r *AdminRepository) Grant(ctx context.Context, a *domain.Admin) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(a).Error
}

func (r *AdminRepository) Revoke(ctx context.Context, userID string) error {
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Admin{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AdminRepository) List(ctx context.Context) ([]domain.Admin, error) {
	var admins []domain.Admin
	err := r.db.WithContext(ctx).Order("created_at").Find(&admins).Error
	return admins, err
}
