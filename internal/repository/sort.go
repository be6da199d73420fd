package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// SortSpec orders a read-all by one field.
type SortSpec struct {
	Field string
	Desc  bool
}

func Asc(field string) SortSpec  { return SortSpec{Field: field} }
func Desc(field string) SortSpec { return SortSpec{Field: field, Desc: true} }

var sortableColumns = map[string]map[string]bool{
	"users":            {"created_at": true, "full_name": true, "email": true, "updated_at": true},
	"services":         {"created_at": true, "price": true, "name": true, "updated_at": true},
	"membership_plans": {"created_at": true, "price": true, "name": true, "updated_at": true},
	"transactions":     {"created_at": true, "amount": true},
}

// apply adds ORDER BY for a whitelisted column; the id tie-breaker keeps results stable.
func (s SortSpec) apply(q *gorm.DB, table string) (*gorm.DB, error) {
	if s.Field == "" {
		return q.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}), nil
	}
	if !sortableColumns[table][s.Field] {
		return nil, fmt.Errorf("cannot order %s by %q", table, s.Field)
	}
	return q.
		Order(clause.OrderByColumn{Column: clause.Column{Name: s.Field}, Desc: s.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}), nil
}
