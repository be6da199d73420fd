package admin

import (
	"bytes"
	"strings"
	"time"

	"suryawash/internal/domain"
)

// Stats summarizes the user collection for the dashboard cards.
type Stats struct {
	TotalUsers       int            `json:"total_users"`
	ActiveMembers    int            `json:"active_members"`
	InactiveMembers  int            `json:"inactive_members"`
	PlanCounts       map[string]int `json:"plan_counts"`
	ActiveAccounts   int            `json:"active_accounts"`
	InactiveAccounts int            `json:"inactive_accounts"`
}

// Statistics counts users by membership and account status. The well-known plan
// keys are always present in PlanCounts, other plan keys only when used.
func Statistics(users []domain.Profile) Stats {
	st := Stats{
		TotalUsers: len(users),
		PlanCounts: map[string]int{
			domain.PlanMonthly:    0,
			domain.PlanHalfYearly: 0,
			domain.PlanYearly:     0,
		},
	}
	for _, u := range users {
		switch u.MembershipStatus {
		case domain.MembershipActive:
			st.ActiveMembers++
		case domain.MembershipInactive:
			st.InactiveMembers++
		}
		switch u.AccountStatus {
		case domain.AccountActive:
			st.ActiveAccounts++
		case domain.AccountInactive:
			st.InactiveAccounts++
		}
		if plan := u.PlanKey(); plan != "" {
			st.PlanCounts[plan]++
		}
	}
	return st
}

// SearchUsers keeps users whose name, email, phone or plan contains term, ignoring case.
func SearchUsers(users []domain.Profile, term string) []domain.Profile {
	if term == "" {
		return users
	}
	term = strings.ToLower(term)

	out := make([]domain.Profile, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.FullName), term) ||
			strings.Contains(strings.ToLower(u.Email), term) ||
			strings.Contains(u.Phone, term) ||
			strings.Contains(strings.ToLower(u.PlanKey()), term) {
			out = append(out, u)
		}
	}
	return out
}

// FilterByMembership keeps users on plan. "" and "all" keep everyone.
func FilterByMembership(users []domain.Profile, plan string) []domain.Profile {
	if plan == "" || plan == "all" {
		return users
	}
	out := make([]domain.Profile, 0, len(users))
	for _, u := range users {
		if u.PlanKey() == plan {
			out = append(out, u)
		}
	}
	return out
}

func FilterByAccountStatus(users []domain.Profile, status string) []domain.Profile {
	if status == "" || status == "all" {
		return users
	}
	out := make([]domain.Profile, 0, len(users))
	for _, u := range users {
		if string(u.AccountStatus) == status {
			out = append(out, u)
		}
	}
	return out
}

var csvHeader = []string{"Full Name", "Email", "Phone", "Membership Plan", "Membership Status", "Account Status", "Created At"}

// ExportCSV renders users as CSV. Data cells are always quoted; rows are joined by "\n"
// with no trailing newline.
func ExportCSV(users []domain.Profile) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(csvHeader, ","))

	for _, u := range users {
		plan := u.PlanKey()
		if plan == "" {
			plan = "None"
		}
		membership := string(u.MembershipStatus)
		if membership == "" {
			membership = string(domain.MembershipInactive)
		}
		account := string(u.AccountStatus)
		if account == "" {
			account = string(domain.AccountActive)
		}
		created := ""
		if !u.CreatedAt.IsZero() {
			created = u.CreatedAt.Format("2006-01-02")
		}

		buf.WriteByte('\n')
		for i, cell := range []string{u.FullName, u.Email, u.Phone, plan, membership, account, created} {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			buf.WriteByte('"')
		}
	}
	return buf.Bytes()
}

// ExportFilename names the export after the UTC date of now.
func ExportFilename(now time.Time) string {
	return "users_export_" + now.UTC().Format("2006-01-02") + ".csv"
}

var planLabels = map[string]string{
	domain.PlanMonthly:    "Monthly",
	domain.PlanHalfYearly: "Half-Yearly",
	domain.PlanYearly:     "Yearly",
}

// FormatMembershipPlan returns the display name of a plan key; unknown keys pass through.
func FormatMembershipPlan(plan string) string {
	if plan == "" {
		return "None"
	}
	if label, ok := planLabels[plan]; ok {
		return label
	}
	return plan
}

// FormatDate renders t like "Jan 2, 2006", or "N/A" when unset.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "N/A"
	}
	return t.Format("Jan 2, 2006")
}
