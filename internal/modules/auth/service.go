package auth

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"suryawash/internal/database"
	"suryawash/internal/domain"
	"suryawash/internal/identity"
	"suryawash/internal/pkg/validator"

	"gorm.io/gorm"
)

// AdminDenyDelay is how long a signed-in non-admin sees the denial notice before redirect.
const AdminDenyDelay = 1500 * time.Millisecond

var sixDigits = regexp.MustCompile(`^\d{6}$`)

// Service contains the sign-up, sign-in and session workflows
type Service struct {
	provider identity.Provider
	profiles ProfileRepository
	admins   AdminRepository
	loggerf  func(format string, args ...interface{})
}

func NewService(provider identity.Provider, profiles ProfileRepository, admins AdminRepository, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = log.Printf
	}
	return &Service{provider: provider, profiles: profiles, admins: admins, loggerf: loggerf}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest, meta identity.ClientMeta) (*AuthResult, error) {
	switch {
	case !validator.ValidateFullName(req.FullName):
		return nil, fail(CodeValidation, MsgInvalidFullName)
	case !validator.ValidateEmail(req.Email):
		return nil, fail(CodeValidation, MsgInvalidEmail)
	case !validator.ValidatePhone(req.Phone):
		return nil, fail(CodeValidation, MsgInvalidPhone)
	case !validator.ValidatePassword(req.Password):
		return nil, fail(CodeValidation, MsgShortPassword)
	}

	sess, err := s.provider.CreateAccount(ctx, req.Email, req.Password, meta)
	if err != nil {
		return nil, friendly(err, registerMessages)
	}

	profile := domain.NewProfile(
		sess.UserID,
		strings.TrimSpace(req.FullName),
		strings.ToLower(strings.TrimSpace(req.Email)),
		strings.TrimSpace(req.Phone),
		true,
	)
	if err := s.profiles.Create(ctx, profile); err != nil {
		s.loggerf("level=error msg=profile_create_failed user_id=%s err=%v", sess.UserID, err)
		if delErr := s.provider.DeleteAccount(ctx, sess.UserID); delErr != nil {
			s.loggerf("level=error msg=account_rollback_failed user_id=%s err=%v", sess.UserID, delErr)
		}
		return nil, err
	}

	s.loggerf("level=info msg=user_registered user_id=%s", sess.UserID)
	return &AuthResult{User: profile, Token: sess.Token, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest, meta identity.ClientMeta) (*AuthResult, error) {
	if err := checkCredentials(req); err != nil {
		return nil, err
	}

	sess, err := s.provider.SignInWithPassword(ctx, req.Email, req.Password, meta)
	if err != nil {
		return nil, friendly(err, loginMessages)
	}

	profile, err := s.loadOrProvision(ctx, sess)
	if err != nil {
		s.signOutQuietly(ctx, sess.Token)
		return nil, err
	}
	if profile.IsDeactivated() {
		s.signOutQuietly(ctx, sess.Token)
		s.loggerf("level=info msg=login_refused_deactivated user_id=%s", sess.UserID)
		return nil, fail(CodeAccountDeactivated, MsgAccountDeactivated)
	}

	isAdmin, err := s.admins.Exists(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: profile, Token: sess.Token, ExpiresAt: sess.ExpiresAt, IsAdmin: isAdmin}, nil
}

func (s *Service) AdminLogin(ctx context.Context, req LoginRequest, meta identity.ClientMeta) (*AuthResult, error) {
	if err := checkCredentials(req); err != nil {
		return nil, err
	}

	sess, err := s.provider.SignInWithPassword(ctx, req.Email, req.Password, meta)
	if err != nil {
		return nil, friendly(err, adminLoginMessages)
	}

	isAdmin, err := s.admins.Exists(ctx, sess.UserID)
	if err != nil {
		s.signOutQuietly(ctx, sess.Token)
		return nil, err
	}
	if !isAdmin {
		s.signOutQuietly(ctx, sess.Token)
		s.loggerf("level=warn msg=admin_login_denied user_id=%s", sess.UserID)
		return nil, fail(CodeAdminRequired, MsgAdminRequired)
	}

	profile, err := s.CurrentUserData(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: profile, Token: sess.Token, ExpiresAt: sess.ExpiresAt, IsAdmin: true}, nil
}

func (s *Service) IssueChallenge(ctx context.Context) (*ChallengeResponse, error) {
	ch, err := s.provider.IssueChallenge(ctx)
	if err != nil {
		return nil, err
	}
	return &ChallengeResponse{Token: ch.Token, ExpiresAt: ch.ExpiresAt}, nil
}

// StartPhoneLogin sends a code and returns the handle the verify step needs.
// Each call yields its own handle, so repeated attempts never clobber each other's state.
func (s *Service) StartPhoneLogin(ctx context.Context, req PhoneStartRequest) (*PhoneAttemptResponse, error) {
	if !validator.ValidatePhone(req.Phone) {
		return nil, fail(CodeValidation, MsgInvalidPhone)
	}
	if strings.TrimSpace(req.ChallengeToken) == "" {
		return nil, fail(CodeChallengeRequired, MsgChallengeRequired)
	}

	attempt, err := s.provider.SendPhoneCode(ctx, req.Phone, req.ChallengeToken)
	if err != nil {
		return nil, friendly(err, phoneMessages)
	}
	return &PhoneAttemptResponse{VerificationID: attempt.VerificationID, ExpiresAt: attempt.ExpiresAt}, nil
}

func (s *Service) VerifyPhoneLogin(ctx context.Context, req PhoneVerifyRequest, meta identity.ClientMeta) (*AuthResult, error) {
	if strings.TrimSpace(req.VerificationID) == "" {
		return nil, fail(identity.CodeMissingVerificationID, MsgRequestCodeFirst)
	}
	if !sixDigits.MatchString(strings.TrimSpace(req.Code)) {
		return nil, fail(CodeValidation, MsgMissingCode)
	}

	conf, err := s.provider.ConfirmPhoneCode(ctx, req.VerificationID, strings.TrimSpace(req.Code), meta)
	if err != nil {
		return nil, friendly(err, phoneMessages)
	}
	sess := conf.Session

	isNew := false
	profile, err := s.profiles.GetByID(ctx, sess.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = domain.NewProfile(sess.UserID, "", "", sess.Phone, false)
		if err = s.profiles.Create(ctx, profile); err == nil {
			isNew = true
			s.loggerf("level=info msg=phone_user_created user_id=%s", sess.UserID)
		} else if database.IsUniqueViolation(err) {
			profile, err = s.profiles.GetByID(ctx, sess.UserID)
		}
	}
	if err != nil {
		s.signOutQuietly(ctx, sess.Token)
		return nil, err
	}
	if profile.IsDeactivated() {
		s.signOutQuietly(ctx, sess.Token)
		return nil, fail(CodeAccountDeactivated, MsgAccountDeactivated)
	}

	isAdmin, err := s.admins.Exists(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: profile, Token: sess.Token, ExpiresAt: sess.ExpiresAt, IsAdmin: isAdmin, IsNewUser: isNew}, nil
}

// CompleteProfile fills in the name and email a phone sign-up starts without.
func (s *Service) CompleteProfile(ctx context.Context, userID string, req CompleteProfileRequest) (*domain.Profile, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if !validator.ValidateFullName(req.FullName) {
		return nil, fail(CodeValidation, MsgInvalidFullName)
	}
	if !validator.ValidateEmail(req.Email) {
		return nil, fail(CodeValidation, MsgInvalidEmail)
	}

	err := s.profiles.UpdateFields(ctx, userID, map[string]any{
		"full_name":           strings.TrimSpace(req.FullName),
		"email":               strings.ToLower(strings.TrimSpace(req.Email)),
		"is_profile_complete": true,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(CodeProfileNotFound, MsgProfileNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, userID)
}

// Logout ends the session. Unknown or already ended sessions are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.provider.SignOut(ctx, token)
}

func (s *Service) Refresh(ctx context.Context, token string) (*AuthResult, error) {
	sess, err := s.provider.Refresh(ctx, token)
	if err != nil {
		if identity.IsCode(err, identity.CodeSessionExpired) {
			return nil, &Failure{Code: identity.CodeSessionExpired, Message: MsgSessionExpired, cause: err}
		}
		return nil, err
	}
	if err := s.ensureActive(ctx, sess.UserID, sess.Token); err != nil {
		if identity.IsCode(err, identity.CodeSessionExpired) {
			return nil, fail(CodeAccountDeactivated, MsgAccountDeactivated)
		}
		return nil, err
	}
	state, err := s.resolveState(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: state.User, Token: sess.Token, ExpiresAt: sess.ExpiresAt, IsAdmin: state.IsAdmin}, nil
}

// CurrentSession resolves token to a live session. A session of a deactivated account is
// ended here and reported as expired, so access stops even when the bulk sign-out at
// deactivation did not go through.
func (s *Service) CurrentSession(ctx context.Context, token string) (*identity.Session, error) {
	sess, err := s.provider.CurrentSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.ensureActive(ctx, sess.UserID, token); err != nil {
		return nil, err
	}
	return sess, nil
}

// ensureActive signs token out and returns a session-expired error when the account's
// profile is deactivated. Accounts without a profile pass.
func (s *Service) ensureActive(ctx context.Context, userID, token string) error {
	profile, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !profile.IsDeactivated() {
		return nil
	}
	s.signOutQuietly(ctx, token)
	s.loggerf("level=info msg=session_refused_deactivated user_id=%s", userID)
	return &identity.Error{Code: identity.CodeSessionExpired, Message: MsgAccountDeactivated}
}

// CurrentUserData returns the profile of userID, or nil when there is none.
func (s *Service) CurrentUserData(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, nil
	}
	profile, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// CurrentState resolves the profile and admin flag of a signed-in user.
func (s *Service) CurrentState(ctx context.Context, userID string) (*SessionState, error) {
	state, err := s.resolveState(ctx, userID)
	if err != nil {
		return nil, err
	}
	state.Event = string(identity.EventSignedIn)
	state.At = time.Now().UTC()
	return state, nil
}

// WatchSession calls fn on every session change of userID until the returned func is called.
func (s *Service) WatchSession(userID string, fn func(SessionState)) func() {
	return s.provider.Subscribe(userID, func(ev identity.Event) {
		if ev.Type == identity.EventSignedOut {
			fn(SessionState{Event: string(ev.Type), At: ev.At})
			return
		}
		state, err := s.resolveState(context.Background(), userID)
		if err != nil {
			s.loggerf("level=error msg=session_state_failed user_id=%s err=%v", userID, err)
			return
		}
		state.Event = string(ev.Type)
		state.At = ev.At
		fn(*state)
	})
}

// Guard decides whether the bearer of token may see a page. A signed-in user without
// admin rights on an admin page is signed out and redirected after AdminDenyDelay.
func (s *Service) Guard(ctx context.Context, token string, requireAdmin bool, redirectTo string) (*domain.AccessDecision, error) {
	sess, err := s.CurrentSession(ctx, token)
	if err != nil {
		if identity.IsCode(err, identity.CodeSessionExpired) {
			return &domain.AccessDecision{Redirect: redirectTo}, nil
		}
		return nil, err
	}

	isAdmin, err := s.admins.Exists(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if requireAdmin && !isAdmin {
		s.signOutQuietly(ctx, token)
		return &domain.AccessDecision{
			UserID:        sess.UserID,
			Redirect:      redirectTo,
			RedirectAfter: AdminDenyDelay,
			Notice:        MsgAdminRequired,
		}, nil
	}
	return &domain.AccessDecision{Allowed: true, UserID: sess.UserID, SessionID: sess.SessionID, IsAdmin: isAdmin}, nil
}

func (s *Service) resolveState(ctx context.Context, userID string) (*SessionState, error) {
	profile, err := s.CurrentUserData(ctx, userID)
	if err != nil {
		return nil, err
	}
	isAdmin, err := s.admins.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SessionState{User: profile, IsAdmin: isAdmin}, nil
}

// loadOrProvision returns the profile of a signed-in account, creating a default one
// when the account has none yet.
func (s *Service) loadOrProvision(ctx context.Context, sess *identity.Session) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, sess.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = domain.NewProfile(sess.UserID, "", sess.Email, sess.Phone, false)
	if err := s.profiles.Create(ctx, profile); err != nil {
		if database.IsUniqueViolation(err) {
			return s.profiles.GetByID(ctx, sess.UserID)
		}
		return nil, err
	}
	s.loggerf("level=info msg=profile_provisioned user_id=%s", sess.UserID)
	return profile, nil
}

func (s *Service) signOutQuietly(ctx context.Context, token string) {
	if err := s.provider.SignOut(ctx, token); err != nil {
		s.loggerf("level=error msg=sign_out_failed err=%v", err)
	}
}

func checkCredentials(req LoginRequest) error {
	if !validator.ValidateEmail(req.Email) {
		return fail(CodeValidation, MsgInvalidEmail)
	}
	if req.Password == "" {
		return fail(CodeValidation, MsgMissingPassword)
	}
	return nil
}
