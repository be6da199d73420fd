package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"suryawash/internal/database"
	"suryawash/internal/domain"
	"suryawash/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool      { return &b }

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, repository.Models()...))
	return NewService(repository.NewCatalogRepository(db), func(string, ...interface{}) {})
}

func TestSaveService_DerivesIDFromName(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	id, err := svc.SaveService(ctx, "", ServiceInput{
		Name:     strPtr("Car  Wash"),
		Price:    f64Ptr(500),
		Features: &[]string{"Exterior foam wash", "Interior vacuum"},
	})
	require.NoError(t, err)
	assert.Equal(t, "car-wash", id)

	// A second create under the same name merges instead of failing.
	_, err = svc.SaveService(ctx, "", ServiceInput{Name: strPtr("Car Wash"), Icon: strPtr("fas fa-car")})
	require.NoError(t, err)

	services, err := svc.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, 500.0, services[0].Price)
	assert.Equal(t, "fas fa-car", services[0].Icon)
	assert.Equal(t, []string{"Exterior foam wash", "Interior vacuum"}, services[0].Features)
}

func TestSaveService_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	id, err := svc.SaveService(ctx, "", ServiceInput{Name: strPtr("Bike Wash"), Price: f64Ptr(100)})
	require.NoError(t, err)
	before, err := svc.repo.GetService(ctx, id)
	require.NoError(t, err)

	_, err = svc.SaveService(ctx, id, ServiceInput{Price: f64Ptr(120)})
	require.NoError(t, err)
	after, err := svc.repo.GetService(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 120.0, after.Price)
	assert.Equal(t, "Bike Wash", after.Name)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
}

func TestSaveService_Validation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SaveService(context.Background(), "", ServiceInput{Price: f64Ptr(10)})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.SaveService(context.Background(), "x", ServiceInput{Price: f64Ptr(-1)})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestPlans_SortedByPrice(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, p := range []struct {
		id    string
		price float64
	}{{"yearly", 269}, {"monthly", 29}, {"halfYearly", 149}} {
		_, err := svc.SavePlan(ctx, p.id, PlanInput{Name: strPtr(p.id), Price: f64Ptr(p.price)})
		require.NoError(t, err)
	}

	plans, err := svc.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "monthly", plans[0].ID)
	assert.Equal(t, "halfYearly", plans[1].ID)
	assert.Equal(t, "yearly", plans[2].ID)
}

func TestDeleteAndGetItem(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.SavePlan(ctx, "monthly", PlanInput{Name: strPtr("Monthly"), Price: f64Ptr(29), Period: strPtr("per month"), Recommended: boolPtr(false)})
	require.NoError(t, err)

	item, err := svc.GetItem(ctx, domain.ItemPlan, "monthly")
	require.NoError(t, err)
	assert.Equal(t, "per month", item.Description)

	require.NoError(t, svc.DeletePlan(ctx, "monthly"))
	assert.ErrorIs(t, svc.DeletePlan(ctx, "monthly"), ErrNotFound)

	_, err = svc.GetItem(ctx, domain.ItemPlan, "monthly")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteService(ctx, "nope"), ErrNotFound)
}

func TestHandler_ServiceCRUD(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(newTestService(t)).RegisterAdminRoutes(router.Group("/admin"))

	do := func(method, path, body string) (int, map[string]any) {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		var out map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return w.Code, out
	}

	code, body := do(http.MethodPost, "/admin/services", `{"name":"Car Wash","price":500}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "car-wash", body["data"].(map[string]any)["id"])
	assert.Equal(t, "Service saved successfully!", body["notice"].(map[string]any)["message"])

	code, _ = do(http.MethodPost, "/admin/services", `{"name":"Car Wash","price":-5}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(http.MethodPut, "/admin/services/car-wash", `{"price":550}`)
	assert.Equal(t, http.StatusOK, code)

	code, body = do(http.MethodGet, "/admin/services", "")
	require.Equal(t, http.StatusOK, code)
	services := body["data"].(map[string]any)["services"].([]any)
	require.Len(t, services, 1)
	assert.Equal(t, 550.0, services[0].(map[string]any)["price"])

	code, _ = do(http.MethodDelete, "/admin/services/car-wash", "")
	assert.Equal(t, http.StatusOK, code)
	code, body = do(http.MethodDelete, "/admin/services/car-wash", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}
