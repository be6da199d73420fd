package domain

import "time"

// Account is the identity record: credentials only, no profile data.
type Account struct {
	ID                  string     `gorm:"column:id;primaryKey;size:64" json:"id"`
	Email               *string    `gorm:"column:email;uniqueIndex" json:"email,omitempty"`
	Phone               *string    `gorm:"column:phone;uniqueIndex" json:"phone,omitempty"`
	PasswordHash        string     `gorm:"column:password_hash" json:"-"`
	FailedLoginAttempts int        `gorm:"column:failed_login_attempts;not null;default:0" json:"-"`
	LockedUntil         *time.Time `gorm:"column:locked_until" json:"-"`
	CreatedAt           time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

func (a *Account) EmailValue() string {
	if a.Email == nil {
		return ""
	}
	return *a.Email
}

func (a *Account) PhoneValue() string {
	if a.Phone == nil {
		return ""
	}
	return *a.Phone
}

// Session is a server-side login session. Tokens carry its id; revoking the row ends the session.
type Session struct {
	ID        string     `gorm:"column:id;primaryKey;size:64" json:"id"`
	AccountID string     `gorm:"column:account_id;index;not null" json:"account_id"`
	UserAgent string     `gorm:"column:user_agent" json:"-"`
	IP        string     `gorm:"column:ip" json:"-"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	ExpiresAt time.Time  `gorm:"column:expires_at;index;not null" json:"expires_at"`
	RevokedAt *time.Time `gorm:"column:revoked_at;index" json:"revoked_at"`
}

func (Session) TableName() string { return "sessions" }

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}
