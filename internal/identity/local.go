package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"suryawash/internal/database"
	"suryawash/internal/domain"
	"suryawash/internal/pkg/cache"
	"suryawash/internal/pkg/jwt"
	"suryawash/internal/pkg/validator"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
	maxCodeAttempts        = 5
)

var commonPasswords = map[string]bool{
	"123456": true, "1234567": true, "12345678": true, "123456789": true,
	"password": true, "qwerty": true, "abc123": true, "111111": true,
	"letmein": true, "welcome": true, "iloveyou": true, "admin123": true,
}

type AccountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Account, error)
	RecordFailedLogin(ctx context.Context, id string, maxAttempts int, lockFor time.Duration) (int, error)
	ResetFailedLogins(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	RevokeAllForAccount(ctx context.Context, accountID string, at time.Time) (int64, error)
	Extend(ctx context.Context, id string, expiresAt time.Time) error
}

type Config struct {
	ChallengeSecret   string
	ChallengeTTL      time.Duration
	OTPTTL            time.Duration
	OTPResendCooldown time.Duration
	OTPWindow         time.Duration
	OTPMaxPerWindow   int
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// LocalProvider is the in-process identity provider backed by the database and a cache.
type LocalProvider struct {
	accounts   AccountStore
	sessions   SessionStore
	tokens     *jwt.Service
	sms        SMSSender
	limiter    *Limiter
	challenges *challenges
	codes      *phoneCodes
	watcher    *Watcher
	bcryptCost int
	now        func() time.Time
	loggerf    func(format string, args ...interface{})
}

var _ Provider = (*LocalProvider)(nil)

func NewLocalProvider(
	accounts AccountStore,
	sessions SessionStore,
	tokens *jwt.Service,
	c cache.Cache,
	sms SMSSender,
	cfg Config,
	loggerf func(format string, args ...interface{}),
) *LocalProvider {
	if loggerf == nil {
		loggerf = log.Printf
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	now := func() time.Time { return time.Now().UTC() }
	return &LocalProvider{
		accounts:   accounts,
		sessions:   sessions,
		tokens:     tokens,
		sms:        sms,
		limiter:    NewLimiter(c, cfg.OTPWindow, cfg.OTPMaxPerWindow, cfg.OTPResendCooldown),
		challenges: &challenges{secret: []byte(cfg.ChallengeSecret), ttl: cfg.ChallengeTTL, cache: c, now: now},
		codes:      &phoneCodes{cache: c, ttl: cfg.OTPTTL, maxAttempts: maxCodeAttempts, now: now},
		watcher:    NewWatcher(),
		bcryptCost: cfg.BcryptCost,
		now:        now,
		loggerf:    loggerf,
	}
}

func (p *LocalProvider) CreateAccount(ctx context.Context, email, password string, meta ClientMeta) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validator.ValidateEmail(email) {
		return nil, newError(CodeInvalidEmail, "The email address is badly formatted.")
	}
	if IsWeakPassword(password) {
		return nil, newError(CodeWeakPassword, "Password should be at least 6 characters and hard to guess.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return nil, err
	}
	acc := &domain.Account{ID: uuid.NewString(), Email: &email, PasswordHash: string(hash)}
	if err := p.accounts.Create(ctx, acc); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, newError(CodeEmailAlreadyInUse, "The email address is already in use by another account.")
		}
		return nil, err
	}
	p.loggerf("level=info msg=account_created user_id=%s method=password", acc.ID)
	return p.startSession(ctx, acc, meta)
}

func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string, meta ClientMeta) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validator.ValidateEmail(email) {
		return nil, newError(CodeInvalidEmail, "The email address is badly formatted.")
	}
	acc, err := p.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(CodeUserNotFound, "There is no user record corresponding to this identifier.")
		}
		return nil, err
	}

	now := p.now()
	if acc.LockedUntil != nil && acc.LockedUntil.After(now) {
		return nil, newError(CodeTooManyRequests, "Access to this account has been temporarily disabled due to many failed login attempts.")
	}

	if acc.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		attempts, err := p.accounts.RecordFailedLogin(ctx, acc.ID, maxFailedLoginAttempts, lockoutDuration)
		if err != nil {
			return nil, err
		}
		if attempts >= maxFailedLoginAttempts {
			p.loggerf("level=warn msg=account_locked user_id=%s", acc.ID)
			return nil, newError(CodeTooManyRequests, "Access to this account has been temporarily disabled due to many failed login attempts.")
		}
		return nil, newError(CodeWrongPassword, "The password is invalid.")
	}

	if acc.FailedLoginAttempts > 0 || acc.LockedUntil != nil {
		if err := p.accounts.ResetFailedLogins(ctx, acc.ID); err != nil {
			return nil, err
		}
	}
	return p.startSession(ctx, acc, meta)
}

func (p *LocalProvider) IssueChallenge(_ context.Context) (*Challenge, error) {
	return p.challenges.issue(), nil
}

func (p *LocalProvider) SendPhoneCode(ctx context.Context, phone, challengeToken string) (*PhoneAttempt, error) {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return nil, newError(CodeInvalidPhoneNumber, "The phone number is not valid.")
	}
	if err := p.challenges.redeem(ctx, challengeToken); err != nil {
		return nil, err
	}
	if err := p.limiter.Allow(ctx, normalized); err != nil {
		return nil, err
	}

	attempt, code, err := p.codes.start(ctx, normalized)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Your Surya Motors verification code is %s", code)
	if err := p.sms.Send(ctx, normalized, msg); err != nil {
		p.codes.discard(ctx, attempt.VerificationID, normalized)
		if errors.Is(err, ErrSMSUnavailable) {
			return nil, newError(CodeQuotaExceeded, "SMS delivery is temporarily unavailable. Please try again later.")
		}
		return nil, fmt.Errorf("send code: %w", err)
	}
	return attempt, nil
}

func (p *LocalProvider) ConfirmPhoneCode(ctx context.Context, verificationID, code string, meta ClientMeta) (*PhoneConfirmation, error) {
	phone, err := p.codes.confirm(ctx, verificationID, code)
	if err != nil {
		return nil, err
	}

	acc, err := p.accounts.GetByPhone(ctx, phone)
	created := false
	if errors.Is(err, gorm.ErrRecordNotFound) {
		acc = &domain.Account{ID: uuid.NewString(), Phone: &phone}
		if err = p.accounts.Create(ctx, acc); err == nil {
			created = true
			p.loggerf("level=info msg=account_created user_id=%s method=phone", acc.ID)
		} else if database.IsUniqueViolation(err) {
			acc, err = p.accounts.GetByPhone(ctx, phone)
		}
	}
	if err != nil {
		return nil, err
	}

	sess, err := p.startSession(ctx, acc, meta)
	if err != nil {
		return nil, err
	}
	return &PhoneConfirmation{Session: sess, NewAccount: created}, nil
}

// SignOut revokes the session behind token. Unknown, expired and revoked tokens are ignored.
func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	claims, err := p.tokens.ValidateToken(token)
	if err != nil {
		return nil
	}
	sess, err := p.sessions.GetByID(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if sess.IsRevoked() {
		return nil
	}
	now := p.now()
	if err := p.sessions.Revoke(ctx, sess.ID, now); err != nil {
		return err
	}
	p.watcher.Publish(Event{Type: EventSignedOut, UserID: sess.AccountID, SessionID: sess.ID, At: now})
	return nil
}

func (p *LocalProvider) CurrentSession(ctx context.Context, token string) (*Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, newError(CodeSessionExpired, "no active session")
	}
	claims, err := p.tokens.ValidateToken(token)
	if err != nil {
		return nil, newError(CodeSessionExpired, "the session has expired; sign in again")
	}
	sess, err := p.sessions.GetByID(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(CodeSessionExpired, "the session has expired; sign in again")
		}
		return nil, err
	}
	if sess.IsRevoked() || sess.IsExpired(p.now()) || sess.AccountID != claims.UserID {
		return nil, newError(CodeSessionExpired, "the session has expired; sign in again")
	}
	acc, err := p.accounts.GetByID(ctx, sess.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(CodeSessionExpired, "the session has expired; sign in again")
		}
		return nil, err
	}
	return &Session{
		UserID:    acc.ID,
		SessionID: sess.ID,
		Token:     token,
		Email:     acc.EmailValue(),
		Phone:     acc.PhoneValue(),
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// Refresh extends a live session and returns a new token for it.
func (p *LocalProvider) Refresh(ctx context.Context, token string) (*Session, error) {
	cur, err := p.CurrentSession(ctx, token)
	if err != nil {
		return nil, err
	}
	newToken, expiresAt, err := p.tokens.GenerateToken(cur.UserID, cur.SessionID)
	if err != nil {
		return nil, err
	}
	if err := p.sessions.Extend(ctx, cur.SessionID, expiresAt); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(CodeSessionExpired, "the session has expired; sign in again")
		}
		return nil, err
	}
	cur.Token = newToken
	cur.ExpiresAt = expiresAt
	p.watcher.Publish(Event{Type: EventRefreshed, UserID: cur.UserID, SessionID: cur.SessionID, At: p.now()})
	return cur, nil
}

func (p *LocalProvider) SignOutEverywhere(ctx context.Context, userID string) error {
	now := p.now()
	n, err := p.sessions.RevokeAllForAccount(ctx, userID, now)
	if err != nil {
		return err
	}
	if n > 0 {
		p.loggerf("level=info msg=sessions_revoked user_id=%s count=%d", userID, n)
		p.watcher.Publish(Event{Type: EventSignedOut, UserID: userID, At: now})
	}
	return nil
}

// DeleteAccount removes the account and ends all its sessions.
func (p *LocalProvider) DeleteAccount(ctx context.Context, userID string) error {
	if err := p.accounts.Delete(ctx, userID); err != nil {
		return err
	}
	p.loggerf("level=info msg=account_deleted user_id=%s", userID)
	p.watcher.Publish(Event{Type: EventSignedOut, UserID: userID, At: p.now()})
	return nil
}

func (p *LocalProvider) Subscribe(userID string, fn func(Event)) func() {
	return p.watcher.Subscribe(userID, fn)
}

func (p *LocalProvider) startSession(ctx context.Context, acc *domain.Account, meta ClientMeta) (*Session, error) {
	sessionID := uuid.NewString()
	token, expiresAt, err := p.tokens.GenerateToken(acc.ID, sessionID)
	if err != nil {
		return nil, err
	}
	now := p.now()
	if err := p.sessions.Create(ctx, &domain.Session{
		ID:        sessionID,
		AccountID: acc.ID,
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, err
	}
	p.watcher.Publish(Event{Type: EventSignedIn, UserID: acc.ID, SessionID: sessionID, At: now})
	return &Session{
		UserID:    acc.ID,
		SessionID: sessionID,
		Token:     token,
		Email:     acc.EmailValue(),
		Phone:     acc.PhoneValue(),
		ExpiresAt: expiresAt,
	}, nil
}

// IsWeakPassword reports passwords the provider refuses: shorter than six characters,
// one repeated character, or a well-known common password.
func IsWeakPassword(password string) bool {
	runes := []rune(password)
	if len(runes) < validator.MinPasswordLength {
		return true
	}
	if strings.Count(password, string(runes[0])) == len(runes) {
		return true
	}
	return commonPasswords[strings.ToLower(password)]
}
