package identity

import (
	"context"
	"time"
)

// ClientMeta describes where a sign-in came from. Both fields are optional.
type ClientMeta struct {
	UserAgent string
	IP        string
}

// Session is an authenticated session as seen by callers.
type Session struct {
	UserID    string
	SessionID string
	Token     string
	Email     string
	Phone     string
	ExpiresAt time.Time
}

// Challenge is a short-lived anti-abuse token required before a phone code is sent.
type Challenge struct {
	Token     string
	ExpiresAt time.Time
}

// PhoneAttempt is the handle of one pending phone sign-in.
type PhoneAttempt struct {
	VerificationID string
	ExpiresAt      time.Time
}

// PhoneConfirmation is the result of confirming a phone code.
type PhoneConfirmation struct {
	Session *Session
	// NewAccount is true when the phone number had no account before.
	NewAccount bool
}

type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
	EventRefreshed EventType = "refreshed"
)

// Event is a session change for one user.
type Event struct {
	Type      EventType
	UserID    string
	SessionID string
	At        time.Time
}

// Provider is the identity boundary: credentials, sessions and phone sign-in.
// Every failure it reports with a stable code is an *Error.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string, meta ClientMeta) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string, meta ClientMeta) (*Session, error)
	IssueChallenge(ctx context.Context) (*Challenge, error)
	SendPhoneCode(ctx context.Context, phone, challengeToken string) (*PhoneAttempt, error)
	ConfirmPhoneCode(ctx context.Context, verificationID, code string, meta ClientMeta) (*PhoneConfirmation, error)
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*Session, error)
	Refresh(ctx context.Context, token string) (*Session, error)
	// SignOutEverywhere revokes every live session of userID.
	SignOutEverywhere(ctx context.Context, userID string) error
	DeleteAccount(ctx context.Context, userID string) error
	// Subscribe registers fn for session changes of userID and returns the unsubscribe func.
	Subscribe(userID string, fn func(Event)) func()
}
