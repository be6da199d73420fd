package auth

import (
	"context"

	"suryawash/internal/domain"
)

// ProfileRepository is the part of the profile store the auth workflows use.
type ProfileRepository interface {
	Create(ctx context.Context, p *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
}

type AdminRepository interface {
	Exists(ctx context.Context, userID string) (bool, error)
}
