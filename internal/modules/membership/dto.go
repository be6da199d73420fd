package membership

import "time"

const defaultIcon = "fas fa-star"

const (
	actionSubscribe = "Subscribe Now"
	actionRegister  = "Register to Subscribe"
)

// PlanView is a membership card as the plans page shows it.
type PlanView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	PriceLabel  string   `json:"price_label"`
	Period      string   `json:"period"`
	Features    []string `json:"features"`
	Recommended bool     `json:"recommended"`
	Icon        string   `json:"icon"`
	ActionLabel string   `json:"action_label"`
}

type PlansPage struct {
	Plans    []PlanView `json:"plans"`
	SignedIn bool       `json:"signed_in"`
	// Empty is the placeholder text shown when there are no plans.
	Empty string `json:"empty,omitempty"`
}

type SubscribeRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

type SubscribeResult struct {
	PlanID    string    `json:"plan_id"`
	StartedAt time.Time `json:"started_at"`
}
