package auth

import (
	"errors"
	"net/http"

	"suryawash/internal/identity"
	"suryawash/internal/middleware"
	"suryawash/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	homePage            = "index.html"
	adminDashboardPage  = "admin/dashboard.html"
	completeProfilePage = "complete-profile.html"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/admin/login", h.AdminLogin)
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.GET("/phone/challenge", h.PhoneChallenge)
		authGroup.POST("/phone/start", h.PhoneStart)
		authGroup.POST("/phone/verify", h.PhoneVerify)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	userGroup := protected.Group("/users")
	{
		userGroup.GET("/me", h.GetMe)
		userGroup.PUT("/me/profile", h.CompleteProfile)
	}
}

// Register creates an account and its profile.
// @Summary		Register
// @Tags		Auth
// @Param		request	body	RegisterRequest	true	"full_name, email, phone, password"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/auth/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	result, err := h.service.Register(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		writeError(c, err, "Registration failed. Please try again.")
		return
	}
	response.SuccessWithNotice(c, http.StatusCreated, result,
		response.NewNotice(response.NoticeSuccess, "Registration successful! Welcome to Surya Motors."),
		response.NewRedirect(homePage, 0))
}

// Login signs a user in with email and password.
// @Summary		Login
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"email, password"
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{} "account deactivated"
// @Router		/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		writeError(c, err, "Login failed. Please try again.")
		return
	}
	response.SuccessWithNotice(c, http.StatusOK, result,
		response.NewNotice(response.NoticeSuccess, "Login successful!"),
		response.NewRedirect(homePage, 0))
}

// @Summary		Admin login
// @Tags		Auth
// @Router		/auth/admin/login [POST]
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	result, err := h.service.AdminLogin(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		writeError(c, err, "Login failed. Please try again.")
		return
	}
	response.SuccessWithNotice(c, http.StatusOK, result, nil, response.NewRedirect(adminDashboardPage, 0))
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		writeError(c, err, "Logout failed. Please try again.")
		return
	}
	response.SuccessWithNotice(c, http.StatusOK, gin.H{"signed_out": true}, nil, response.NewRedirect(homePage, 0))
}

func (h *Handler) Refresh(c *gin.Context) {
	result, err := h.service.Refresh(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		writeError(c, err, "Failed to refresh session")
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) PhoneChallenge(c *gin.Context) {
	ch, err := h.service.IssueChallenge(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to prepare verification")
		return
	}
	response.Success(c, http.StatusOK, ch)
}

// PhoneStart sends a one-time code to the phone.
// @Summary		Start phone login
// @Tags		Auth
// @Param		request	body	PhoneStartRequest	true	"phone, challenge_token"
// @Success		200	{object}	PhoneAttemptResponse
// @Failure		429	{object}	map[string]interface{}
// @Router		/auth/phone/start [POST]
func (h *Handler) PhoneStart(c *gin.Context) {
	var req PhoneStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	attempt, err := h.service.StartPhoneLogin(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to send verification code")
		return
	}
	response.SuccessWithNotice(c, http.StatusOK, attempt,
		response.NewNotice(response.NoticeSuccess, "Verification code sent!"), nil)
}

func (h *Handler) PhoneVerify(c *gin.Context) {
	var req PhoneVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	result, err := h.service.VerifyPhoneLogin(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		writeError(c, err, "Verification failed. Please try again.")
		return
	}
	next := homePage
	if result.IsNewUser || (result.User != nil && !result.User.IsProfileComplete) {
		next = completeProfilePage
	}
	response.SuccessWithNotice(c, http.StatusOK, result,
		response.NewNotice(response.NoticeSuccess, "Phone verified successfully!"),
		response.NewRedirect(next, 0))
}

func (h *Handler) GetMe(c *gin.Context) {
	state, err := h.service.CurrentState(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err, "Failed to load user")
		return
	}
	response.Success(c, http.StatusOK, state)
}

func (h *Handler) CompleteProfile(c *gin.Context) {
	var req CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	profile, err := h.service.CompleteProfile(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err, "Failed to update profile")
		return
	}
	response.SuccessWithNotice(c, http.StatusOK, profile,
		response.NewNotice(response.NoticeSuccess, "Profile updated successfully!"),
		response.NewRedirect(homePage, 0))
}

func writeError(c *gin.Context, err error, fallback string) {
	var f *Failure
	switch {
	case errors.As(err, &f):
		response.Error(c, StatusFor(f.Code), f.Code, f.Message)
	case errors.Is(err, ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func clientMeta(c *gin.Context) identity.ClientMeta {
	return identity.ClientMeta{UserAgent: c.Request.UserAgent(), IP: c.ClientIP()}
}
