package admin

import "suryawash/internal/domain"

type UpdateMembershipRequest struct {
	// Plan nil (or JSON null) clears the membership.
	Plan *string `json:"plan"`
}

type UpdateStatusRequest struct {
	Status domain.AccountStatus `json:"status" validate:"required,oneof=active inactive"`
}

// UserRow is a profile as the users table shows it.
type UserRow struct {
	domain.Profile
	PlanLabel   string `json:"plan_label"`
	JoinedLabel string `json:"joined_label"`
}

type UsersResponse struct {
	Users []UserRow `json:"users"`
	Total int       `json:"total"`
	Shown int       `json:"shown"`
}

func toRows(profiles []domain.Profile) []UserRow {
	rows := make([]UserRow, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, UserRow{
			Profile:     p,
			PlanLabel:   FormatMembershipPlan(p.PlanKey()),
			JoinedLabel: FormatDate(&p.CreatedAt),
		})
	}
	return rows
}
