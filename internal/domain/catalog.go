package domain

import (
	"strings"
	"time"
)

type ItemType string

const (
	ItemService ItemType = "service"
	ItemPlan    ItemType = "plan"
)

func ParseItemType(s string) (ItemType, bool) {
	switch ItemType(strings.ToLower(strings.TrimSpace(s))) {
	case ItemService:
		return ItemService, true
	case ItemPlan:
		return ItemPlan, true
	}
	return "", false
}

// Service is a wash offering shown on the landing page.
type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Features    []string  `json:"features"`
	Icon        string    `json:"icon"`
	Gradient    string    `json:"gradient"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MembershipPlan is a subscription tier. More than one plan may be flagged recommended.
type MembershipPlan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Period      string    `json:"period"`
	Features    []string  `json:"features"`
	Recommended bool      `json:"recommended"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServicePatch lists the fields a save touches; nil fields are left as stored.
type ServicePatch struct {
	Name        *string
	Price       *float64
	Description *string
	Features    *[]string
	Icon        *string
	Gradient    *string
}

type PlanPatch struct {
	Name        *string
	Price       *float64
	Period      *string
	Features    *[]string
	Recommended *bool
	Icon        *string
}

// CatalogItem is the part of a service or plan that checkout needs.
type CatalogItem struct {
	Type        ItemType `json:"type"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
}
