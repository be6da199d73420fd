package membership

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"suryawash/internal/domain"
	"suryawash/internal/repository"

	"gorm.io/gorm"
)

var (
	// ErrFetchTimeout is returned when the plan read outlives its deadline.
	ErrFetchTimeout     = errors.New("membership fetch timeout")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUnknownPlan      = errors.New("membership plan not found")
)

const DefaultFetchTimeout = 10 * time.Second

type PlanRepository interface {
	ListPlans(ctx context.Context, sort repository.SortSpec) ([]domain.MembershipPlan, error)
	GetPlan(ctx context.Context, id string) (*domain.MembershipPlan, error)
}

type ProfileRepository interface {
	ActivateMembership(ctx context.Context, id, planID string) (time.Time, error)
}

type Service struct {
	plans        PlanRepository
	profiles     ProfileRepository
	fetchTimeout time.Duration
	loggerf      func(format string, args ...interface{})
}

func NewService(plans PlanRepository, profiles ProfileRepository, fetchTimeout time.Duration, loggerf func(format string, args ...interface{})) *Service {
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	if loggerf == nil {
		loggerf = log.Printf
	}
	return &Service{plans: plans, profiles: profiles, fetchTimeout: fetchTimeout, loggerf: loggerf}
}

// FetchPlans reads every plan, cancelling the read once the fetch timeout passes.
func (s *Service) FetchPlans(ctx context.Context) ([]domain.MembershipPlan, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	plans, err := s.plans.ListPlans(fetchCtx, repository.SortSpec{})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			s.loggerf("level=warn msg=membership_fetch_timeout timeout=%s", s.fetchTimeout)
			return nil, fmt.Errorf("%w (%s)", ErrFetchTimeout, s.fetchTimeout)
		}
		return nil, fmt.Errorf("fetch membership plans: %w", err)
	}
	return plans, nil
}

// RenderPlans orders plans by price, keeping the stored order for equal prices.
func RenderPlans(plans []domain.MembershipPlan, signedIn bool) PlansPage {
	page := PlansPage{Plans: make([]PlanView, 0, len(plans)), SignedIn: signedIn}
	if len(plans) == 0 {
		page.Empty = "No membership plans found."
		return page
	}

	sorted := make([]domain.MembershipPlan, len(plans))
	copy(sorted, plans)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	action := actionRegister
	if signedIn {
		action = actionSubscribe
	}
	for _, p := range sorted {
		icon := p.Icon
		if icon == "" {
			icon = defaultIcon
		}
		features := p.Features
		if features == nil {
			features = []string{}
		}
		page.Plans = append(page.Plans, PlanView{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			PriceLabel:  priceLabel(p.Price),
			Period:      p.Period,
			Features:    features,
			Recommended: p.Recommended,
			Icon:        icon,
			ActionLabel: action,
		})
	}
	return page
}

func (s *Service) FetchTimeout() time.Duration {
	return s.fetchTimeout
}

func (s *Service) Plans(ctx context.Context, signedIn bool) (PlansPage, error) {
	plans, err := s.FetchPlans(ctx)
	if err != nil {
		return PlansPage{}, err
	}
	return RenderPlans(plans, signedIn), nil
}

// Subscribe puts userID on planID starting now, replacing any current plan.
func (s *Service) Subscribe(ctx context.Context, userID, planID string) (*SubscribeResult, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if _, err := s.plans.GetPlan(ctx, planID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownPlan
		}
		return nil, err
	}

	startedAt, err := s.profiles.ActivateMembership(ctx, userID, planID)
	if err != nil {
		return nil, fmt.Errorf("activate membership: %w", err)
	}
	s.loggerf("level=info msg=membership_subscribed user_id=%s plan=%s", userID, planID)
	return &SubscribeResult{PlanID: planID, StartedAt: startedAt}, nil
}

func priceLabel(price float64) string {
	if price == 0 {
		return "N/A"
	}
	return "₹" + strconv.FormatFloat(price, 'f', -1, 64)
}
