package repository

import (
	"context"
	"testing"
	"time"

	"suryawash/internal/database"
	"suryawash/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, Models()...))
	return db
}

func strPtr(s string) *string       { return &s }
func f64Ptr(f float64) *float64     { return &f }
func boolPtr(b bool) *bool          { return &b }
func featPtr(f ...string) *[]string { return &f }

func TestProfileRepository_CreateAndUpdateFields(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(setupDB(t))

	p := domain.NewProfile("u1", "Ravi Kumar", "ravi@example.com", "9876543210", true)
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipInactive, got.MembershipStatus)
	assert.Equal(t, domain.AccountActive, got.AccountStatus)
	assert.Nil(t, got.MembershipPlan)

	require.NoError(t, repo.SetAccountStatus(ctx, "u1", domain.AccountInactive))
	got, err = repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.IsDeactivated())
	assert.Equal(t, "Ravi Kumar", got.FullName)

	err = repo.UpdateFields(ctx, "missing", map[string]any{"full_name": "x"})
	assert.True(t, IsNotFound(err))
}

func TestProfileRepository_Membership(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(setupDB(t))
	require.NoError(t, repo.Create(ctx, domain.NewProfile("u1", "A B", "a@b.co", "", true)))

	startedAt, err := repo.ActivateMembership(ctx, "u1", domain.PlanYearly)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanYearly, got.PlanKey())
	assert.Equal(t, domain.MembershipActive, got.MembershipStatus)
	require.NotNil(t, got.MembershipStartDate)
	assert.WithinDuration(t, startedAt, *got.MembershipStartDate, time.Second)

	require.NoError(t, repo.SetMembership(ctx, "u1", nil, nil))
	got, err = repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "", got.PlanKey())
	assert.Equal(t, domain.MembershipInactive, got.MembershipStatus)
}

func TestProfileRepository_ListSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(setupDB(t))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		at := base.Add(time.Duration(i) * time.Hour)
		repo.now = func() time.Time { return at }
		require.NoError(t, repo.Create(ctx, domain.NewProfile(id, id, id+"@x.io", "", true)))
	}

	list, err := repo.List(ctx, Desc("created_at"))
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "a", list[2].ID)

	_, err = repo.List(ctx, Asc("password"))
	assert.Error(t, err)
}

func TestCatalogRepository_MergeService(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository(setupDB(t))

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return created }
	require.NoError(t, repo.MergeService(ctx, "car-wash", domain.ServicePatch{
		Name:     strPtr("Car Wash"),
		Price:    f64Ptr(500),
		Features: featPtr("Exterior Wash", "Interior Vacuum"),
		Icon:     strPtr("fas fa-car"),
	}, true))

	updated := created.Add(time.Hour)
	repo.now = func() time.Time { return updated }
	require.NoError(t, repo.MergeService(ctx, "car-wash", domain.ServicePatch{Price: f64Ptr(550)}, false))

	s, err := repo.GetService(ctx, "car-wash")
	require.NoError(t, err)
	assert.Equal(t, "Car Wash", s.Name)
	assert.Equal(t, 550.0, s.Price)
	assert.Equal(t, []string{"Exterior Wash", "Interior Vacuum"}, s.Features)
	assert.Equal(t, "fas fa-car", s.Icon)
	assert.True(t, s.CreatedAt.Equal(created))
	assert.True(t, s.UpdatedAt.Equal(updated))

	require.NoError(t, repo.MergeService(ctx, "car-wash", domain.ServicePatch{}, true))
	s, err = repo.GetService(ctx, "car-wash")
	require.NoError(t, err)
	assert.True(t, s.CreatedAt.Equal(updated))
}

func TestCatalogRepository_PlansAndItems(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository(setupDB(t))

	require.NoError(t, repo.MergePlan(ctx, "yearly", domain.PlanPatch{Name: strPtr("Yearly"), Price: f64Ptr(269), Period: strPtr("year")}, true))
	require.NoError(t, repo.MergePlan(ctx, "monthly", domain.PlanPatch{Name: strPtr("Monthly"), Price: f64Ptr(29), Recommended: boolPtr(true)}, true))

	plans, err := repo.ListPlans(ctx, Asc("price"))
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "monthly", plans[0].ID)
	assert.True(t, plans[0].Recommended)
	assert.Empty(t, plans[0].Features)

	item, err := repo.GetItem(ctx, domain.ItemPlan, "yearly")
	require.NoError(t, err)
	assert.Equal(t, "Yearly", item.Name)
	assert.Equal(t, 269.0, item.Price)

	_, err = repo.GetItem(ctx, domain.ItemService, "yearly")
	assert.True(t, IsNotFound(err))

	require.NoError(t, repo.DeletePlan(ctx, "yearly"))
	assert.True(t, IsNotFound(repo.DeletePlan(ctx, "yearly")))
}

func TestAdminRepository_GrantIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewAdminRepository(setupDB(t))

	require.NoError(t, repo.Grant(ctx, &domain.Admin{UserID: "u1", Email: "boss@example.com"}))
	require.NoError(t, repo.Grant(ctx, &domain.Admin{UserID: "u1", Email: "other@example.com"}))

	ok, err := repo.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	a, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "boss@example.com", a.Email)

	require.NoError(t, repo.Revoke(ctx, "u1"))
	ok, err = repo.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransactionRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := NewTransactionRepository(db)

	tx := &domain.Transaction{ID: "t1", UserID: "u1", ItemType: domain.ItemPlan, ItemID: "monthly", Amount: 29, IdempotencyKey: strPtr("u1:k1")}
	require.NoError(t, repo.Create(ctx, tx))
	assert.Equal(t, domain.TransactionPending, tx.Status)

	dup := &domain.Transaction{ID: "t2", UserID: "u1", ItemType: domain.ItemPlan, ItemID: "monthly", IdempotencyKey: strPtr("u1:k1")}
	assert.True(t, database.IsUniqueViolation(repo.Create(ctx, dup)))

	require.NoError(t, repo.MarkSucceeded(ctx, "t1", "sim_123", true))
	assert.True(t, IsNotFound(repo.MarkFailed(ctx, "t1", "late")))

	got, err := repo.GetByIdempotencyKey(ctx, "u1:k1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionSucceeded, got.Status)
	assert.True(t, got.Activated)
	assert.NotNil(t, got.CompletedAt)
}

func TestAccountRepository_FailedLoginLock(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(setupDB(t))
	require.NoError(t, repo.Create(ctx, &domain.Account{ID: "a1", Email: strPtr("a@b.co"), PasswordHash: "x"}))

	for i := 1; i < 3; i++ {
		n, err := repo.RecordFailedLogin(ctx, "a1", 3, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	_, err := repo.RecordFailedLogin(ctx, "a1", 3, time.Minute)
	require.NoError(t, err)

	a, err := repo.GetByEmail(ctx, "a@b.co")
	require.NoError(t, err)
	require.NotNil(t, a.LockedUntil)
	assert.Equal(t, 0, a.FailedLoginAttempts)

	require.NoError(t, repo.ResetFailedLogins(ctx, "a1"))
	a, err = repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, a.LockedUntil)

	dup := &domain.Account{ID: "a2", Email: strPtr("a@b.co")}
	assert.True(t, database.IsUniqueViolation(repo.Create(ctx, dup)))
}

func TestSessionRepository_RevokeAndPrune(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(setupDB(t))
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &domain.Session{ID: "s1", AccountID: "a1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &domain.Session{ID: "s2", AccountID: "a1", CreatedAt: now, ExpiresAt: now.Add(-time.Hour)}))

	require.NoError(t, repo.Revoke(ctx, "s1", now))
	require.NoError(t, repo.Revoke(ctx, "s1", now))
	s, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, s.IsRevoked())
	assert.True(t, IsNotFound(repo.Extend(ctx, "s1", now.Add(2*time.Hour))))

	n, err := repo.DeleteStale(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
