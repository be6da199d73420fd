package middleware

import (
	"context"
	"net/http"
	"strings"

	"suryawash/internal/domain"
	"suryawash/internal/identity"
	"suryawash/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "user_id"
	ctxSessionID = "session_id"
	ctxToken     = "token"
	ctxIsAdmin   = "is_admin"
)

type SessionResolver interface {
	CurrentSession(ctx context.Context, token string) (*identity.Session, error)
}

type AccessGuard interface {
	Guard(ctx context.Context, token string, requireAdmin bool, redirectTo string) (*domain.AccessDecision, error)
}

// RequireSession rejects requests without a live session and tells the UI where to go instead.
func RequireSession(sessions SessionResolver, redirectTo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code, msg := bearerToken(c)
		if token == "" {
			response.AbortRedirect(c, http.StatusUnauthorized, code, msg, nil, response.NewRedirect(redirectTo, 0))
			return
		}
		sess, err := sessions.CurrentSession(c.Request.Context(), token)
		if err != nil {
			if identity.IsCode(err, identity.CodeSessionExpired) {
				response.AbortRedirect(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Session expired. Please login again.", nil, response.NewRedirect(redirectTo, 0))
				return
			}
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to verify session")
			c.Abort()
			return
		}
		setSession(c, sess)
		c.Next()
	}
}

// OptionalSession attaches the session when a valid token is present and never rejects.
func OptionalSession(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, _, _ := bearerToken(c); token != "" {
			if sess, err := sessions.CurrentSession(c.Request.Context(), token); err == nil {
				setSession(c, sess)
			}
		}
		c.Next()
	}
}

// RequireAdmin runs the admin guard. A signed-in non-admin is signed out by the guard
// and sent to redirectTo after a short delay.
func RequireAdmin(guard AccessGuard, redirectTo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _, _ := bearerToken(c)
		decision, err := guard.Guard(c.Request.Context(), token, true, redirectTo)
		if err != nil {
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to verify admin access")
			c.Abort()
			return
		}
		if !decision.Allowed {
			status, code, msg := http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated"
			var notice *response.Notice
			if decision.Notice != "" {
				status, code, msg = http.StatusForbidden, "FORBIDDEN", decision.Notice
				notice = response.NewNotice(response.NoticeError, decision.Notice)
			}
			response.AbortRedirect(c, status, code, msg, notice, response.NewRedirect(decision.Redirect, decision.RedirectAfter))
			return
		}
		c.Set(ctxUserID, decision.UserID)
		c.Set(ctxSessionID, decision.SessionID)
		c.Set(ctxToken, token)
		c.Set(ctxIsAdmin, true)
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func SessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

func Token(c *gin.Context) string {
	return c.GetString(ctxToken)
}

// BearerToken returns the token from the Authorization header, or "".
func BearerToken(c *gin.Context) string {
	token, _, _ := bearerToken(c)
	return token
}

func setSession(c *gin.Context, sess *identity.Session) {
	c.Set(ctxUserID, sess.UserID)
	c.Set(ctxSessionID, sess.SessionID)
	c.Set(ctxToken, sess.Token)
}

func bearerToken(c *gin.Context) (token, code, message string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "AUTH_HEADER_MISSING", "Not authenticated"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'"
	}
	return strings.TrimSpace(parts[1]), "", ""
}
