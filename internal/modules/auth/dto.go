package auth

import (
	"time"

	"suryawash/internal/domain"
)

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PhoneStartRequest struct {
	Phone          string `json:"phone"`
	ChallengeToken string `json:"challenge_token"`
}

type PhoneVerifyRequest struct {
	VerificationID string `json:"verification_id"`
	Code           string `json:"code"`
}

type CompleteProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// AuthResult is returned by every successful sign-in.
type AuthResult struct {
	User      *domain.Profile `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	IsAdmin   bool            `json:"is_admin"`
	IsNewUser bool            `json:"is_new_user"`
}

type ChallengeResponse struct {
	Token     string    `json:"challenge_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PhoneAttemptResponse struct {
	VerificationID string    `json:"verification_id"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// SessionState is what session watchers receive. User is nil once signed out.
type SessionState struct {
	Event   string          `json:"event"`
	User    *domain.Profile `json:"user"`
	IsAdmin bool            `json:"is_admin"`
	At      time.Time       `json:"at"`
}
