package repository

import (
	"context"
	"errors"
	"time"

	"suryawash/internal/domain"
	"suryawash/internal/pkg/utils"

	"gorm.io/gorm"
)

type CatalogRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type serviceModel struct {
	ID          string    `gorm:"column:id;primaryKey;size:128"`
	Name        string    `gorm:"column:name"`
	Price       float64   `gorm:"column:price"`
	Description string    `gorm:"column:description;type:text"`
	Features    string    `gorm:"column:features;type:text"`
	Icon        string    `gorm:"column:icon"`
	Gradient    string    `gorm:"column:gradient"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (serviceModel) TableName() string { return "services" }

type planModel struct {
	ID          string    `gorm:"column:id;primaryKey;size:128"`
	Name        string    `gorm:"column:name"`
	Price       float64   `gorm:"column:price"`
	Period      string    `gorm:"column:period"`
	Features    string    `gorm:"column:features;type:text"`
	Recommended bool      `gorm:"column:recommended"`
	Icon        string    `gorm:"column:icon"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (planModel) TableName() string { return "membership_plans" }

func toDomainService(m serviceModel) domain.Service {
	return domain.Service{
		ID:          m.ID,
		Name:        m.Name,
		Price:       m.Price,
		Description: m.Description,
		Features:    utils.StringToFeatures(m.Features),
		Icon:        m.Icon,
		Gradient:    m.Gradient,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toDomainPlan(m planModel) domain.MembershipPlan {
	return domain.MembershipPlan{
		ID:          m.ID,
		Name:        m.Name,
		Price:       m.Price,
		Period:      m.Period,
		Features:    utils.StringToFeatures(m.Features),
		Recommended: m.Recommended,
		Icon:        m.Icon,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func servicePatchColumns(p domain.ServicePatch) map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Features != nil {
		cols["features"] = utils.FeaturesToString(*p.Features)
	}
	if p.Icon != nil {
		cols["icon"] = *p.Icon
	}
	if p.Gradient != nil {
		cols["gradient"] = *p.Gradient
	}
	return cols
}

func planPatchColumns(p domain.PlanPatch) map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Period != nil {
		cols["period"] = *p.Period
	}
	if p.Features != nil {
		cols["features"] = utils.FeaturesToString(*p.Features)
	}
	if p.Recommended != nil {
		cols["recommended"] = *p.Recommended
	}
	if p.Icon != nil {
		cols["icon"] = *p.Icon
	}
	return cols
}

/* ---------- SERVICES ---------- */

func (r *CatalogRepository) ListServices(ctx context.Context, sort SortSpec) ([]domain.Service, error) {
	q, err := sort.apply(r.db.WithContext(ctx).Model(&serviceModel{}), "services")
	if err != nil {
		return nil, err
	}
	var rows []serviceModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Service, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainService(m))
	}
	return out, nil
}

func (r *CatalogRepository) GetService(ctx context.Context, id string) (*domain.Service, error) {
	var m serviceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	s := toDomainService(m)
	return &s, nil
}

// MergeService creates the document or merges the patched fields into it.
// Unpatched fields and created_at survive a merge unless resetCreated is set.
func (r *CatalogRepository) MergeService(ctx context.Context, id string, patch domain.ServicePatch, resetCreated bool) error {
	return r.merge(ctx, &serviceModel{}, id, servicePatchColumns(patch), resetCreated, func(now time.Time) any {
		return newServiceModel(id, patch, now)
	})
}

func (r *CatalogRepository) DeleteService(ctx context.Context, id string) error {
	return r.delete(ctx, &serviceModel{}, id)
}

/* ---------- MEMBERSHIP PLANS ---------- */

func (r *CatalogRepository) ListPlans(ctx context.Context, sort SortSpec) ([]domain.MembershipPlan, error) {
	q, err := sort.apply(r.db.WithContext(ctx).Model(&planModel{}), "membership_plans")
	if err != nil {
		return nil, err
	}
	var rows []planModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.MembershipPlan, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainPlan(m))
	}
	return out, nil
}

func (r *CatalogRepository) GetPlan(ctx context.Context, id string) (*domain.MembershipPlan, error) {
	var m planModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	p := toDomainPlan(m)
	return &p, nil
}

func (r *CatalogRepository) MergePlan(ctx context.Context, id string, patch domain.PlanPatch, resetCreated bool) error {
	return r.merge(ctx, &planModel{}, id, planPatchColumns(patch), resetCreated, func(now time.Time) any {
		return newPlanModel(id, patch, now)
	})
}

func (r *CatalogRepository) DeletePlan(ctx context.Context, id string) error {
	return r.delete(ctx, &planModel{}, id)
}

// GetItem looks up a service or plan by id for checkout.
func (r *CatalogRepository) GetItem(ctx context.Context, t domain.ItemType, id string) (*domain.CatalogItem, error) {
	switch t {
	case domain.ItemService:
		s, err := r.GetService(ctx, id)
		if err != nil {
			return nil, err
		}
		return &domain.CatalogItem{Type: t, ID: s.ID, Name: s.Name, Description: s.Description, Price: s.Price}, nil
	case domain.ItemPlan:
		p, err := r.GetPlan(ctx, id)
		if err != nil {
			return nil, err
		}
		return &domain.CatalogItem{Type: t, ID: p.ID, Name: p.Name, Description: p.Period, Price: p.Price}, nil
	}
	return nil, ErrNotFound
}

/* ---------- shared ---------- */

func (r *CatalogRepository) merge(ctx context.Context, model any, id string, cols map[string]any, resetCreated bool, build func(now time.Time) any) error {
	now := r.now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return tx.Create(build(now)).Error
		}

		cols["updated_at"] = now
		if resetCreated {
			cols["created_at"] = now
		}
		return tx.Model(model).Where("id = ?", id).Updates(cols).Error
	})
}

func (r *CatalogRepository) delete(ctx context.Context, model any, id string) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func newServiceModel(id string, p domain.ServicePatch, now time.Time) *serviceModel {
	m := &serviceModel{ID: id, Features: "[]", CreatedAt: now, UpdatedAt: now}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Features != nil {
		m.Features = utils.FeaturesToString(*p.Features)
	}
	if p.Icon != nil {
		m.Icon = *p.Icon
	}
	if p.Gradient != nil {
		m.Gradient = *p.Gradient
	}
	return m
}

func newPlanModel(id string, p domain.PlanPatch, now time.Time) *planModel {
	m := &planModel{ID: id, Features: "[]", CreatedAt: now, UpdatedAt: now}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	if p.Period != nil {
		m.Period = *p.Period
	}
	if p.Features != nil {
		m.Features = utils.FeaturesToString(*p.Features)
	}
	if p.Recommended != nil {
		m.Recommended = *p.Recommended
	}
	if p.Icon != nil {
		m.Icon = *p.Icon
	}
	return m
}

// IsNotFound reports whether err means the document is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
