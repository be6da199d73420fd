package catalog

import (
	"context"
	"errors"
	"log"
	"strings"

	"suryawash/internal/domain"
	"suryawash/internal/pkg/utils"
	"suryawash/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNameRequired = errors.New("name is required to derive an id")
	ErrInvalidPrice = errors.New("price must not be negative")
)

type Repository interface {
	ListServices(ctx context.Context, sort repository.SortSpec) ([]domain.Service, error)
	GetService(ctx context.Context, id string) (*domain.Service, error)
	MergeService(ctx context.Context, id string, patch domain.ServicePatch, resetCreated bool) error
	DeleteService(ctx context.Context, id string) error
	ListPlans(ctx context.Context, sort repository.SortSpec) ([]domain.MembershipPlan, error)
	GetPlan(ctx context.Context, id string) (*domain.MembershipPlan, error)
	MergePlan(ctx context.Context, id string, patch domain.PlanPatch, resetCreated bool) error
	DeletePlan(ctx context.Context, id string) error
	GetItem(ctx context.Context, t domain.ItemType, id string) (*domain.CatalogItem, error)
}

type Service struct {
	repo    Repository
	loggerf func(format string, args ...interface{})
}

func NewService(repo Repository, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = log.Printf
	}
	return &Service{repo: repo, loggerf: loggerf}
}

/* ---------- SERVICES ---------- */

// ListServices returns services newest first.
func (s *Service) ListServices(ctx context.Context) ([]domain.Service, error) {
	return s.repo.ListServices(ctx, repository.Desc("created_at"))
}

// SaveService merges in into the service id. Without an id the id is derived from the
// name and created_at is (re)stamped, merging into any service already under that id.
func (s *Service) SaveService(ctx context.Context, id string, in ServiceInput) (string, error) {
	if in.Price != nil && *in.Price < 0 {
		return "", ErrInvalidPrice
	}
	id, derived, err := resolveID(id, in.Name)
	if err != nil {
		return "", err
	}
	if err := s.repo.MergeService(ctx, id, in.patch(), derived); err != nil {
		return "", err
	}
	s.loggerf("level=info msg=service_saved id=%s derived=%t", id, derived)
	return id, nil
}

func (s *Service) DeleteService(ctx context.Context, id string) error {
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return notFound(err)
	}
	s.loggerf("level=info msg=service_deleted id=%s", id)
	return nil
}

/* ---------- MEMBERSHIP PLANS ---------- */

// ListPlans returns plans cheapest first.
func (s *Service) ListPlans(ctx context.Context) ([]domain.MembershipPlan, error) {
	return s.repo.ListPlans(ctx, repository.Asc("price"))
}

func (s *Service) GetPlan(ctx context.Context, id string) (*domain.MembershipPlan, error) {
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return plan, nil
}

func (s *Service) SavePlan(ctx context.Context, id string, in PlanInput) (string, error) {
	if in.Price != nil && *in.Price < 0 {
		return "", ErrInvalidPrice
	}
	id, derived, err := resolveID(id, in.Name)
	if err != nil {
		return "", err
	}
	if err := s.repo.MergePlan(ctx, id, in.patch(), derived); err != nil {
		return "", err
	}
	s.loggerf("level=info msg=plan_saved id=%s derived=%t", id, derived)
	return id, nil
}

func (s *Service) DeletePlan(ctx context.Context, id string) error {
	if err := s.repo.DeletePlan(ctx, id); err != nil {
		return notFound(err)
	}
	s.loggerf("level=info msg=plan_deleted id=%s", id)
	return nil
}

// GetItem looks up a service or plan for checkout.
func (s *Service) GetItem(ctx context.Context, t domain.ItemType, id string) (*domain.CatalogItem, error) {
	item, err := s.repo.GetItem(ctx, t, id)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

func resolveID(id string, name *string) (string, bool, error) {
	if id = strings.TrimSpace(id); id != "" {
		return id, false, nil
	}
	if name == nil || strings.TrimSpace(*name) == "" {
		return "", false, ErrNameRequired
	}
	return utils.Slugify(strings.TrimSpace(*name)), true, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
