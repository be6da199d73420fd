package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"suryawash/internal/domain"
	"suryawash/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockProvider struct {
	mock.Mock
	subscribed func(identity.Event)
}

func (m *mockProvider) CreateAccount(ctx context.Context, email, password string, meta identity.ClientMeta) (*identity.Session, error) {
	args := m.Called(ctx, email, password, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *mockProvider) SignInWithPassword(ctx context.Context, email, password string, meta identity.ClientMeta) (*identity.Session, error) {
	args := m.Called(ctx, email, password, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *mockProvider) IssueChallenge(ctx context.Context) (*identity.Challenge, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Challenge), args.Error(1)
}

func (m *mockProvider) SendPhoneCode(ctx context.Context, phone, challengeToken string) (*identity.PhoneAttempt, error) {
	args := m.Called(ctx, phone, challengeToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.PhoneAttempt), args.Error(1)
}

func (m *mockProvider) ConfirmPhoneCode(ctx context.Context, verificationID, code string, meta identity.ClientMeta) (*identity.PhoneConfirmation, error) {
	args := m.Called(ctx, verificationID, code, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.PhoneConfirmation), args.Error(1)
}

func (m *mockProvider) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockProvider) CurrentSession(ctx context.Context, token string) (*identity.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *mockProvider) Refresh(ctx context.Context, token string) (*identity.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *mockProvider) SignOutEverywhere(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockProvider) DeleteAccount(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockProvider) Subscribe(userID string, fn func(identity.Event)) func() {
	m.subscribed = fn
	args := m.Called(userID)
	return args.Get(0).(func())
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *mockProfileRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return m.Called(ctx, id, fields).Error(0)
}

type mockAdminRepo struct {
	mock.Mock
}

func (m *mockAdminRepo) Exists(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func newTestService() (*Service, *mockProvider, *mockProfileRepo, *mockAdminRepo) {
	p, profiles, admins := new(mockProvider), new(mockProfileRepo), new(mockAdminRepo)
	return NewService(p, profiles, admins, func(string, ...interface{}) {}), p, profiles, admins
}

func session(uid string) *identity.Session {
	return &identity.Session{UserID: uid, SessionID: "sess-" + uid, Token: "tok-" + uid, ExpiresAt: time.Now().Add(time.Hour)}
}

func failureOf(t *testing.T, err error) *Failure {
	t.Helper()
	var f *Failure
	require.True(t, errors.As(err, &f), "expected *Failure, got %v", err)
	return f
}

func TestService_Register_ValidationOrder(t *testing.T) {
	svc, provider, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		req  RegisterRequest
		want string
	}{
		{RegisterRequest{FullName: "A", Email: "bad", Phone: "1", Password: "1"}, MsgInvalidFullName},
		{RegisterRequest{FullName: "Ravi", Email: "bad", Phone: "1", Password: "1"}, MsgInvalidEmail},
		{RegisterRequest{FullName: "Ravi", Email: "r@x.io", Phone: "123", Password: "1"}, MsgInvalidPhone},
		{RegisterRequest{FullName: "Ravi", Email: "r@x.io", Phone: "+91 98765 43210", Password: "12345"}, MsgShortPassword},
	}
	for _, tc := range cases {
		_, err := svc.Register(ctx, tc.req, identity.ClientMeta{})
		assert.Equal(t, tc.want, failureOf(t, err).Message)
	}
	provider.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Register_Success(t *testing.T) {
	svc, provider, profiles, _ := newTestService()
	ctx := context.Background()

	provider.On("CreateAccount", ctx, "Ravi@Example.com", "secret1", identity.ClientMeta{}).Return(session("u1"), nil)
	profiles.On("Create", ctx, mock.MatchedBy(func(p *domain.Profile) bool {
		return p.ID == "u1" &&
			p.FullName == "Ravi Kumar" &&
			p.Email == "ravi@example.com" &&
			p.Phone == "9876543210" &&
			p.MembershipPlan == nil &&
			p.MembershipStatus == domain.MembershipInactive &&
			p.AccountStatus == domain.AccountActive &&
			p.IsProfileComplete
	})).Return(nil)

	res, err := svc.Register(ctx, RegisterRequest{
		FullName: "  Ravi Kumar ",
		Email:    "Ravi@Example.com",
		Phone:    " 9876543210 ",
		Password: "secret1",
	}, identity.ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, "tok-u1", res.Token)
	profiles.AssertExpectations(t)
}

func TestService_Register_FriendlyProviderErrors(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		identity.CodeEmailAlreadyInUse: "This email is already registered. Please login instead.",
		identity.CodeInvalidEmail:      "Invalid email address format.",
		identity.CodeWeakPassword:      "Password is too weak. Please use a stronger password.",
		"auth/network-request-failed":  "raw provider message",
	}
	for code, want := range cases {
		svc, provider, _, _ := newTestService()
		provider.On("CreateAccount", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &identity.Error{Code: code, Message: "raw provider message"})

		_, err := svc.Register(ctx, RegisterRequest{FullName: "Ravi", Email: "r@x.io", Phone: "9876543210", Password: "secret1"}, identity.ClientMeta{})
		f := failureOf(t, err)
		assert.Equal(t, code, f.Code)
		assert.Equal(t, want, f.Message)
	}
}

func TestService_Register_RollsBackAccountWhenProfileFails(t *testing.T) {
	svc, provider, profiles, _ := newTestService()
	ctx := context.Background()

	provider.On("CreateAccount", ctx, mock.Anything, mock.Anything, mock.Anything).Return(session("u1"), nil)
	profiles.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))
	provider.On("DeleteAccount", ctx, "u1").Return(nil)

	_, err := svc.Register(ctx, RegisterRequest{FullName: "Ravi", Email: "r@x.io", Phone: "9876543210", Password: "secret1"}, identity.ClientMeta{})
	assert.EqualError(t, err, "disk full")
	provider.AssertCalled(t, "DeleteAccount", ctx, "u1")
}

func TestService_Login_Validation(t *testing.T) {
	svc, provider, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{Email: "nope", Password: "x"}, identity.ClientMeta{})
	assert.Equal(t, MsgInvalidEmail, failureOf(t, err).Message)

	_, err = svc.Login(ctx, LoginRequest{Email: "a@b.co"}, identity.ClientMeta{})
	assert.Equal(t, MsgMissingPassword, failureOf(t, err).Message)

	provider.AssertNotCalled(t, "SignInWithPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Login_Success(t *testing.T) {
	svc, provider, profiles, admins := newTestService()
	ctx := context.Background()

	profile := domain.NewProfile("u1", "Ravi", "a@b.co", "", true)
	provider.On("SignInWithPassword", ctx, "a@b.co", "secret1", identity.ClientMeta{}).Return(session("u1"), nil)
	profiles.On("GetByID", ctx, "u1").Return(profile, nil)
	admins.On("Exists", ctx, "u1").Return(false, nil)

	res, err := svc.Login(ctx, LoginRequest{Email: "a@b.co", Password: "secret1"}, identity.ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, profile, res.User)
	assert.False(t, res.IsAdmin)
}

func TestService_Login_DeactivatedAccountIsSignedOut(t *testing.T) {
	svc, provider, profiles, _ := newTestService()
	ctx := context.Background()

	profile := domain.NewProfile("u1", "Ravi", "a@b.co", "", true)
	profile.AccountStatus = domain.AccountInactive
	provider.On("SignInWithPassword", ctx, mock.Anything, mock.Anything, mock.Anything).Return(session("u1"), nil)
	profiles.On("GetByID", ctx, "u1").Return(profile, nil)
	provider.On("SignOut", ctx, "tok-u1").Return(nil)

	_, err := svc.Login(ctx, LoginRequest{Email: "a@b.co", Password: "secret1"}, identity.ClientMeta{})
	f := failureOf(t, err)
	assert.Equal(t, CodeAccountDeactivated, f.Code)
	assert.Equal(t, MsgAccountDeactivated, f.Message)
	provider.AssertCalled(t, "SignOut", ctx, "tok-u1")
}

func TestService_Login_ProvisionsMissingProfile(t *testing.T) {
	svc, provider, profiles, admins := newTestService()
	ctx := context.Background()

	sess := session("u1")
	sess.Email = "a@b.co"
	provider.On("SignInWithPassword", ctx, mock.Anything, mock.Anything, mock.Anything).Return(sess, nil)
	profiles.On("GetByID", ctx, "u1").Return(nil, gorm.ErrRecordNotFound)
	profiles.On("Create", ctx, mock.MatchedBy(func(p *domain.Profile) bool {
		return p.ID == "u1" && p.Email == "a@b.co" && !p.IsProfileComplete
	})).Return(nil)
	admins.On("Exists", ctx, "u1").Return(false, nil)

	res, err := svc.Login(ctx, LoginRequest{Email: "a@b.co", Password: "secret1"}, identity.ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, domain.AccountActive, res.User.AccountStatus)
	profiles.AssertExpectations(t)
}

func TestService_Login_FriendlyProviderErrors(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		identity.CodeUserNotFound:    "No account found with this email. Please register first.",
		identity.CodeWrongPassword:   "Incorrect password. Please try again.",
		identity.CodeTooManyRequests: "Too many failed attempts. Please try again later.",
	}
	for code, want := range cases {
		svc, provider, _, _ := newTestService()
		provider.On("SignInWithPassword", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &identity.Error{Code: code, Message: "raw"})

		_, err := svc.Login(ctx, LoginRequest{Email: "a@b.co", Password: "secret1"}, identity.ClientMeta{})
		assert.Equal(t, want, failureOf(t, err).Message)
	}
}

func TestService_AdminLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("non admin is signed out", func(t *testing.T) {
		svc, provider, _, admins := newTestService()
		provider.On("SignInWithPassword", ctx, mock.Anything, mock.Anything, mock.Anything).Return(session("u1"), nil)
		admins.On("Exists", ctx, "u1").Return(false, nil)
		provider.On("SignOut", ctx, "tok-u1").Return(nil)

		_, err := svc.AdminLogin(ctx, LoginRequest{Email: "a@b.co", Password: "secret1"}, identity.ClientMeta{})
		assert.Equal(t, MsgAdminRequired, failureOf(t, err).Message)
		provider.AssertCalled(t, "SignOut", ctx, "tok-u1")
	})

	t.Run("admin without profile", func(t *testing.T) {
		svc, provider, profiles, admins := newTestService()
		provider.On("SignInWithPassword", ctx, mock.Anything, mock.Anything, mock.Anything).Return(session("a1"), nil)
		admins.On("Exists", ctx, "a1").Return(true, nil)
		profiles.On("GetByID", ctx, "a1").Return(nil, gorm.ErrRecordNotFound)

		res, err := svc.AdminLogin(ctx, LoginRequest{Email: "a@b.co", Password: "secret1"}, identity.ClientMeta{})
		require.NoError(t, err)
		assert.True(t, res.IsAdmin)
		assert.Nil(t, res.User)
	})

	t.Run("admin messages", func(t *testing.T) {
		svc, provider, _, _ := newTestService()
		provider.On("SignInWithPassword", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &identity.Error{Code: identity.CodeWrongPassword, Message: "raw"})

		_, err := svc.AdminLogin(ctx, LoginRequest{Email: "a@b.co", Password: "x"}, identity.ClientMeta{})
		assert.Equal(t, "Incorrect password.", failureOf(t, err).Message)
	})
}

func TestService_StartPhoneLogin(t *testing.T) {
	svc, provider, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.StartPhoneLogin(ctx, PhoneStartRequest{Phone: "12", ChallengeToken: "c"})
	assert.Equal(t, MsgInvalidPhone, failureOf(t, err).Message)

	_, err = svc.StartPhoneLogin(ctx, PhoneStartRequest{Phone: "+91 98765 43210"})
	assert.Equal(t, CodeChallengeRequired, failureOf(t, err).Code)

	expires := time.Now().Add(5 * time.Minute)
	provider.On("SendPhoneCode", ctx, "+91 98765 43210", "c").
		Return(&identity.PhoneAttempt{VerificationID: "v1", ExpiresAt: expires}, nil)
	attempt, err := svc.StartPhoneLogin(ctx, PhoneStartRequest{Phone: "+91 98765 43210", ChallengeToken: "c"})
	require.NoError(t, err)
	assert.Equal(t, "v1", attempt.VerificationID)
}

func TestService_VerifyPhoneLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("missing handle", func(t *testing.T) {
		svc, provider, _, _ := newTestService()
		_, err := svc.VerifyPhoneLogin(ctx, PhoneVerifyRequest{Code: "123456"}, identity.ClientMeta{})
		assert.Equal(t, identity.CodeMissingVerificationID, failureOf(t, err).Code)
		provider.AssertNotCalled(t, "ConfirmPhoneCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("first time phone user", func(t *testing.T) {
		svc, provider, profiles, admins := newTestService()
		sess := session("p1")
		sess.Phone = "+919876543210"
		provider.On("ConfirmPhoneCode", ctx, "v1", "123456", identity.ClientMeta{}).
			Return(&identity.PhoneConfirmation{Session: sess, NewAccount: true}, nil)
		profiles.On("GetByID", ctx, "p1").Return(nil, gorm.ErrRecordNotFound)
		profiles.On("Create", ctx, mock.MatchedBy(func(p *domain.Profile) bool {
			return p.Phone == "+919876543210" && !p.IsProfileComplete &&
				p.MembershipStatus == domain.MembershipInactive && p.AccountStatus == domain.AccountActive
		})).Return(nil)
		admins.On("Exists", ctx, "p1").Return(false, nil)

		res, err := svc.VerifyPhoneLogin(ctx, PhoneVerifyRequest{VerificationID: "v1", Code: " 123456 "}, identity.ClientMeta{})
		require.NoError(t, err)
		assert.True(t, res.IsNewUser)
	})

	t.Run("wrong code", func(t *testing.T) {
		svc, provider, _, _ := newTestService()
		provider.On("ConfirmPhoneCode", ctx, "v1", "000000", identity.ClientMeta{}).
			Return(nil, &identity.Error{Code: identity.CodeInvalidVerificationCode, Message: "raw"})

		_, err := svc.VerifyPhoneLogin(ctx, PhoneVerifyRequest{VerificationID: "v1", Code: "000000"}, identity.ClientMeta{})
		assert.Equal(t, identity.CodeInvalidVerificationCode, failureOf(t, err).Code)
	})
}

func TestService_CompleteProfile(t *testing.T) {
	svc, _, profiles, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CompleteProfile(ctx, "", CompleteProfileRequest{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	profiles.On("UpdateFields", ctx, "p1", map[string]any{
		"full_name":           "Asha Rao",
		"email":               "asha@x.io",
		"is_profile_complete": true,
	}).Return(nil)
	complete := domain.NewProfile("p1", "Asha Rao", "asha@x.io", "+919876543210", true)
	profiles.On("GetByID", ctx, "p1").Return(complete, nil)

	got, err := svc.CompleteProfile(ctx, "p1", CompleteProfileRequest{FullName: " Asha Rao", Email: "Asha@X.io"})
	require.NoError(t, err)
	assert.True(t, got.IsProfileComplete)
}

func TestService_Guard(t *testing.T) {
	ctx := context.Background()

	t.Run("no session redirects", func(t *testing.T) {
		svc, provider, _, _ := newTestService()
		provider.On("CurrentSession", ctx, "").Return(nil, &identity.Error{Code: identity.CodeSessionExpired})

		d, err := svc.Guard(ctx, "", false, "login.html")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, "login.html", d.Redirect)
		assert.Zero(t, d.RedirectAfter)
	})

	t.Run("non admin on admin page", func(t *testing.T) {
		svc, provider, profiles, admins := newTestService()
		provider.On("CurrentSession", ctx, "tok").Return(session("u1"), nil)
		profiles.On("GetByID", ctx, "u1").Return(domain.NewProfile("u1", "Ravi", "a@b.co", "", true), nil)
		admins.On("Exists", ctx, "u1").Return(false, nil)
		provider.On("SignOut", ctx, "tok").Return(nil)

		d, err := svc.Guard(ctx, "tok", true, "admin/login.html")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, MsgAdminRequired, d.Notice)
		assert.Equal(t, AdminDenyDelay, d.RedirectAfter)
		provider.AssertCalled(t, "SignOut", ctx, "tok")
	})

	t.Run("admin allowed", func(t *testing.T) {
		svc, provider, profiles, admins := newTestService()
		provider.On("CurrentSession", ctx, "tok").Return(session("a1"), nil)
		profiles.On("GetByID", ctx, "a1").Return(nil, gorm.ErrRecordNotFound)
		admins.On("Exists", ctx, "a1").Return(true, nil)

		d, err := svc.Guard(ctx, "tok", true, "admin/login.html")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.True(t, d.IsAdmin)
		assert.Equal(t, "a1", d.UserID)
	})
}

func TestService_CurrentSessionRefusesDeactivated(t *testing.T) {
	ctx := context.Background()
	svc, provider, profiles, _ := newTestService()
	provider.On("CurrentSession", ctx, "tok").Return(session("u1"), nil)
	deactivated := domain.NewProfile("u1", "Ravi", "a@b.co", "", true)
	deactivated.AccountStatus = domain.AccountInactive
	profiles.On("GetByID", ctx, "u1").Return(deactivated, nil)
	provider.On("SignOut", ctx, "tok").Return(nil)

	_, err := svc.CurrentSession(ctx, "tok")
	assert.True(t, identity.IsCode(err, identity.CodeSessionExpired))
	provider.AssertCalled(t, "SignOut", ctx, "tok")

	d, err := svc.Guard(ctx, "tok", false, "login.html")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, "login.html", d.Redirect)
}

func TestService_RefreshRefusesDeactivated(t *testing.T) {
	ctx := context.Background()
	svc, provider, profiles, _ := newTestService()
	provider.On("Refresh", ctx, "tok").Return(session("u1"), nil)
	deactivated := domain.NewProfile("u1", "Ravi", "a@b.co", "", true)
	deactivated.AccountStatus = domain.AccountInactive
	profiles.On("GetByID", ctx, "u1").Return(deactivated, nil)
	provider.On("SignOut", ctx, "tok-u1").Return(nil)

	_, err := svc.Refresh(ctx, "tok")
	f := failureOf(t, err)
	assert.Equal(t, CodeAccountDeactivated, f.Code)
	provider.AssertCalled(t, "SignOut", ctx, "tok-u1")
}

func TestService_WatchSession(t *testing.T) {
	svc, provider, profiles, admins := newTestService()
	unsubscribed := false
	provider.On("Subscribe", "u1").Return(func() { unsubscribed = true })
	profiles.On("GetByID", mock.Anything, "u1").Return(domain.NewProfile("u1", "Ravi", "a@b.co", "", true), nil)
	admins.On("Exists", mock.Anything, "u1").Return(true, nil)

	var states []SessionState
	stop := svc.WatchSession("u1", func(s SessionState) { states = append(states, s) })

	provider.subscribed(identity.Event{Type: identity.EventSignedIn, UserID: "u1"})
	provider.subscribed(identity.Event{Type: identity.EventSignedOut, UserID: "u1"})
	stop()

	require.Len(t, states, 2)
	assert.Equal(t, "Ravi", states[0].User.FullName)
	assert.True(t, states[0].IsAdmin)
	assert.Nil(t, states[1].User)
	assert.False(t, states[1].IsAdmin)
	assert.True(t, unsubscribed)
}
