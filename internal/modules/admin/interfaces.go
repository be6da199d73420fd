package admin

import (
	"context"
	"time"

	"suryawash/internal/domain"
	"suryawash/internal/repository"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	List(ctx context.Context, sort repository.SortSpec) ([]domain.Profile, error)
	SetMembership(ctx context.Context, id string, plan *string, startedAt *time.Time) error
	SetAccountStatus(ctx context.Context, id string, status domain.AccountStatus) error
}

type AdminRepository interface {
	Grant(ctx context.Context, a *domain.Admin) error
	Revoke(ctx context.Context, userID string) error
	List(ctx context.Context) ([]domain.Admin, error)
}

// SessionRevoker ends every session of a user; deactivation uses it.
type SessionRevoker interface {
	SignOutEverywhere(ctx context.Context, userID string) error
}
