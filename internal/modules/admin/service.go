package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"suryawash/internal/domain"
	"suryawash/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidStatus = errors.New("invalid account status")
	ErrNotAdmin      = errors.New("user is not an admin")
)

type Service struct {
	profiles ProfileRepository
	admins   AdminRepository
	sessions SessionRevoker
	now      func() time.Time
	loggerf  func(format string, args ...interface{})
}

func NewService(profiles ProfileRepository, admins AdminRepository, sessions SessionRevoker, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = log.Printf
	}
	return &Service{
		profiles: profiles,
		admins:   admins,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
		loggerf:  loggerf,
	}
}

// -------------------- Users --------------------

// ListUsers returns every profile, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]domain.Profile, error) {
	return s.profiles.List(ctx, repository.Desc("created_at"))
}

// QueryUsers lists users and applies search, then the membership and status filters.
func (s *Service) QueryUsers(ctx context.Context, term, membership, status string) (all, shown []domain.Profile, err error) {
	all, err = s.ListUsers(ctx)
	if err != nil {
		return nil, nil, err
	}
	shown = SearchUsers(all, strings.TrimSpace(term))
	shown = FilterByMembership(shown, membership)
	shown = FilterByAccountStatus(shown, status)
	return all, shown, nil
}

func (s *Service) Statistics(ctx context.Context) (Stats, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Statistics(users), nil
}

// UpdateUserMembership sets or clears the plan; membership status follows it.
func (s *Service) UpdateUserMembership(ctx context.Context, userID string, plan *string) error {
	if plan != nil && strings.TrimSpace(*plan) == "" {
		plan = nil
	}
	if err := s.profiles.SetMembership(ctx, userID, plan, nil); err != nil {
		return notFound(err)
	}
	s.loggerf("level=info msg=admin_membership_updated user_id=%s plan=%q", userID, derefPlan(plan))
	return nil
}

// UpdateUserAccountStatus activates or deactivates an account. Deactivation also
// signs the user out of every session.
func (s *Service) UpdateUserAccountStatus(ctx context.Context, userID string, status domain.AccountStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := s.profiles.SetAccountStatus(ctx, userID, status); err != nil {
		return notFound(err)
	}
	s.loggerf("level=info msg=admin_account_status_updated user_id=%s status=%s", userID, status)

	if status == domain.AccountInactive && s.sessions != nil {
		if err := s.sessions.SignOutEverywhere(ctx, userID); err != nil {
			// sessions left over are refused by auth.Service.CurrentSession
			s.loggerf("level=warn msg=revoke_sessions_failed user_id=%s err=%q", userID, err.Error())
		}
	}
	return nil
}

// -------------------- Admins --------------------

// GrantAdmin marks the user with email as administrator. Granting twice is a no-op.
func (s *Service) GrantAdmin(ctx context.Context, email string) (*domain.Admin, error) {
	p, err := s.profiles.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, notFound(err)
	}
	a := &domain.Admin{UserID: p.ID, Email: p.Email, Name: p.FullName}
	if err := s.admins.Grant(ctx, a); err != nil {
		return nil, fmt.Errorf("grant admin: %w", err)
	}
	s.loggerf("level=info msg=admin_granted user_id=%s", p.ID)
	return a, nil
}

func (s *Service) RevokeAdmin(ctx context.Context, email string) error {
	p, err := s.profiles.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return notFound(err)
	}
	if err := s.admins.Revoke(ctx, p.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotAdmin
		}
		return err
	}
	s.loggerf("level=info msg=admin_revoked user_id=%s", p.ID)
	return nil
}

func (s *Service) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	return s.admins.List(ctx)
}

// Export renders the whole user collection as CSV, with the download file name.
func (s *Service) Export(ctx context.Context) ([]byte, string, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, "", err
	}
	return ExportCSV(users), ExportFilename(s.now()), nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

func derefPlan(plan *string) string {
	if plan == nil {
		return ""
	}
	return *plan
}
