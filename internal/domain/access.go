package domain

import "time"

// AccessDecision is the outcome of guarding a page or route.
type AccessDecision struct {
	Allowed       bool
	UserID        string
	SessionID     string
	IsAdmin       bool
	Redirect      string
	RedirectAfter time.Duration
	Notice        string
}
