package repository

import (
	"context"
	"time"

	"suryawash/internal/domain"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *ProfileRepository) DB() *gorm.DB {
	return r.db
}

// Create stores p with server-assigned timestamps.
func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	now := r.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByEmail matches the email case-insensitively.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	var p domain.Profile
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns the whole collection; there is no pagination.
func (r *ProfileRepository) List(ctx context.Context, sort SortSpec) ([]domain.Profile, error) {
	q, err := sort.apply(r.db.WithContext(ctx).Model(&domain.Profile{}), "users")
	if err != nil {
		return nil, err
	}
	var profiles []domain.Profile
	if err := q.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// UpdateFields writes only the given columns. Concurrent writers are last-writer-wins.
func (r *ProfileRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["updated_at"] = r.now()

	tx := r.db.WithContext(ctx).Model(&domain.Profile{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMembership overwrites the subscription fields. A nil plan clears the membership.
func (r *ProfileRepository) SetMembership(ctx context.Context, id string, plan *string, startedAt *time.Time) error {
	status := domain.MembershipInactive
	if plan != nil {
		status = domain.MembershipActive
	}
	fields := map[string]any{
		"membership_plan":   plan,
		"membership_status": status,
	}
	if startedAt != nil {
		fields["membership_start_date"] = *startedAt
	}
	return r.UpdateFields(ctx, id, fields)
}

// ActivateMembership sets plan, a server-assigned start timestamp and active status.
func (r *ProfileRepository) ActivateMembership(ctx context.Context, id, planID string) (time.Time, error) {
	startedAt := r.now()
	plan := planID
	return startedAt, r.SetMembership(ctx, id, &plan, &startedAt)
}

func (r *ProfileRepository) SetAccountStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	return r.UpdateFields(ctx, id, map[string]any{"account_status": status})
}
