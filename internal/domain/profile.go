package domain

import "time"

type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
)

func (s AccountStatus) Valid() bool {
	return s == AccountActive || s == AccountInactive
}

// Well-known membership plan keys. Plans are catalog documents, so other keys may exist.
const (
	PlanMonthly    = "monthly"
	PlanHalfYearly = "halfYearly"
	PlanYearly     = "yearly"
)

// Profile is the user document. ID equals the identity account id and never changes.
//
// MembershipStatus follows the presence of MembershipPlan; AccountStatus is set by
// administrators independently and an inactive account cannot log in.
type Profile struct {
	ID                  string           `gorm:"column:id;primaryKey;size:64" json:"id"`
	FullName            string           `gorm:"column:full_name" json:"full_name"`
	Email               string           `gorm:"column:email;index" json:"email"`
	Phone               string           `gorm:"column:phone;index" json:"phone"`
	MembershipPlan      *string          `gorm:"column:membership_plan" json:"membership_plan"`
	MembershipStartDate *time.Time       `gorm:"column:membership_start_date" json:"membership_start_date"`
	MembershipStatus    MembershipStatus `gorm:"column:membership_status;size:16;not null" json:"membership_status"`
	AccountStatus       AccountStatus    `gorm:"column:account_status;size:16;not null" json:"account_status"`
	IsProfileComplete   bool             `gorm:"column:is_profile_complete" json:"is_profile_complete"`
	CreatedAt           time.Time        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt           time.Time        `gorm:"column:updated_at" json:"updated_at"`
}

func (Profile) TableName() string { return "users" }

// NewProfile returns a profile in the state every new account starts with:
// no plan, inactive membership, active account.
func NewProfile(id, fullName, email, phone string, complete bool) *Profile {
	return &Profile{
		ID:                id,
		FullName:          fullName,
		Email:             email,
		Phone:             phone,
		MembershipStatus:  MembershipInactive,
		AccountStatus:     AccountActive,
		IsProfileComplete: complete,
	}
}

// PlanKey returns the membership plan or "" when none is set.
func (p *Profile) PlanKey() string {
	if p.MembershipPlan == nil {
		return ""
	}
	return *p.MembershipPlan
}

func (p *Profile) IsDeactivated() bool {
	return p.AccountStatus == AccountInactive
}
