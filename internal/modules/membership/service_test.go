package membership

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"suryawash/internal/database"
	"suryawash/internal/domain"
	"suryawash/internal/identity"
	"suryawash/internal/middleware"
	"suryawash/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet(string, ...interface{}) {}

// slowPlans blocks until the read is cancelled.
type slowPlans struct{}

func (slowPlans) ListPlans(ctx context.Context, _ repository.SortSpec) ([]domain.MembershipPlan, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowPlans) GetPlan(ctx context.Context, id string) (*domain.MembershipPlan, error) {
	return nil, repository.ErrNotFound
}

type fakeSessions struct{}

func (fakeSessions) CurrentSession(_ context.Context, token string) (*identity.Session, error) {
	if token == "good" {
		return &identity.Session{UserID: "u1", SessionID: "s1", Token: token}, nil
	}
	return nil, errors.New("session expired")
}

func seeded(t *testing.T) (*Service, *repository.ProfileRepository) {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, repository.Models()...))

	ctx := context.Background()
	catalog := repository.NewCatalogRepository(db)
	for id, price := range map[string]float64{"yearly": 269, "monthly": 29, "halfYearly": 149} {
		name, p := id, price
		require.NoError(t, catalog.MergePlan(ctx, id, domain.PlanPatch{Name: &name, Price: &p}, true))
	}
	profiles := repository.NewProfileRepository(db)
	require.NoError(t, profiles.Create(ctx, domain.NewProfile("u1", "Ravi Kumar", "ravi@example.com", "", true)))

	return NewService(catalog, profiles, time.Second, quiet), profiles
}

func TestFetchPlans_Timeout(t *testing.T) {
	svc := NewService(slowPlans{}, nil, 20*time.Millisecond, quiet)

	start := time.Now()
	_, err := svc.FetchPlans(context.Background())

	require.ErrorIs(t, err, ErrFetchTimeout)
	assert.Contains(t, err.Error(), "(20ms)")
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewService_DefaultTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, NewService(slowPlans{}, nil, 0, quiet).FetchTimeout())
}

func TestRenderPlans(t *testing.T) {
	plans := []domain.MembershipPlan{
		{ID: "yearly", Name: "Yearly", Price: 269, Recommended: true},
		{ID: "b", Name: "B", Price: 29, Icon: "fas fa-car"},
		{ID: "a", Name: "A", Price: 29, Recommended: true},
	}

	page := RenderPlans(plans, false)
	require.Len(t, page.Plans, 3)
	assert.Equal(t, []string{"b", "a", "yearly"}, []string{page.Plans[0].ID, page.Plans[1].ID, page.Plans[2].ID})
	assert.Equal(t, "fas fa-car", page.Plans[0].Icon)
	assert.Equal(t, defaultIcon, page.Plans[1].Icon)
	assert.True(t, page.Plans[1].Recommended)
	assert.True(t, page.Plans[2].Recommended)
	assert.Equal(t, "Register to Subscribe", page.Plans[0].ActionLabel)
	assert.Equal(t, "₹269", page.Plans[2].PriceLabel)
	assert.Equal(t, "yearly", plans[0].ID, "input must not be reordered")

	assert.Equal(t, "Subscribe Now", RenderPlans(plans, true).Plans[0].ActionLabel)
	assert.Equal(t, "No membership plans found.", RenderPlans(nil, true).Empty)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	svc, profiles := seeded(t)

	_, err := svc.Subscribe(ctx, "", "monthly")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.Subscribe(ctx, "u1", "lifetime")
	assert.ErrorIs(t, err, ErrUnknownPlan)

	res, err := svc.Subscribe(ctx, "u1", "monthly")
	require.NoError(t, err)
	assert.Equal(t, "monthly", res.PlanID)

	// Subscribing again replaces the plan.
	_, err = svc.Subscribe(ctx, "u1", "yearly")
	require.NoError(t, err)
	p, err := profiles.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "yearly", p.PlanKey())
	assert.Equal(t, domain.MembershipActive, p.MembershipStatus)
	require.NotNil(t, p.MembershipStartDate)
}

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"), middleware.OptionalSession(fakeSessions{}))
	return r
}

func TestHandler_ListPlans(t *testing.T) {
	svc, _ := seeded(t)
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memberships", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data PlansPage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Data.SignedIn)
	require.Len(t, body.Data.Plans, 3)
	assert.Equal(t, "monthly", body.Data.Plans[0].ID)
}

func TestHandler_ListPlansTimeout(t *testing.T) {
	r := newRouter(NewService(slowPlans{}, nil, 10*time.Millisecond, quiet))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/memberships", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "Membership fetch timeout (10ms)")
}

func TestHandler_SubscribeWithoutSession(t *testing.T) {
	svc, _ := seeded(t)
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memberships/subscribe", strings.NewReader(`{"plan_id":"monthly"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Not authenticated", body["error"].(map[string]any)["message"])
	assert.Equal(t, "Please login to subscribe", body["notice"].(map[string]any)["message"])
	assert.Equal(t, "register.html?plan=monthly", body["redirect"].(map[string]any)["to"])
}

func TestHandler_Subscribe(t *testing.T) {
	svc, _ := seeded(t)
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memberships/subscribe", strings.NewReader(`{"plan_id":"halfYearly"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Successfully subscribed!")
}
