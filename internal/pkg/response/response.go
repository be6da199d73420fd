package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	NoticeSuccess = "success"
	NoticeError   = "error"

	// NoticeDuration is how long the UI keeps a notice on screen.
	NoticeDuration = 3 * time.Second
)

// Notice is a transient message the UI shows on top of the page.
type Notice struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	DurationMS int64  `json:"duration_ms"`
}

// RedirectTo tells the UI to navigate, optionally after a delay.
type RedirectTo struct {
	To      string `json:"to"`
	AfterMS int64  `json:"after_ms,omitempty"`
}

func NewNotice(kind, message string) *Notice {
	return &Notice{Type: kind, Message: message, DurationMS: NoticeDuration.Milliseconds()}
}

func NewRedirect(to string, after time.Duration) *RedirectTo {
	if to == "" {
		return nil
	}
	return &RedirectTo{To: to, AfterMS: after.Milliseconds()}
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// SuccessWithNotice is Success plus an optional notice and redirect.
func SuccessWithNotice(c *gin.Context, statusCode int, data interface{}, notice *Notice, redirect *RedirectTo) {
	body := gin.H{
		"success": true,
		"data":    data,
	}
	if notice != nil {
		body["notice"] = notice
	}
	if redirect != nil {
		body["redirect"] = redirect
	}
	c.JSON(statusCode, body)
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Redirect is an error envelope that also carries a notice and a navigation target.
func Redirect(c *gin.Context, statusCode int, code string, message string, notice *Notice, redirect *RedirectTo) {
	body := gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
	if notice != nil {
		body["notice"] = notice
	}
	if redirect != nil {
		body["redirect"] = redirect
	}
	c.JSON(statusCode, body)
}

// AbortRedirect writes Redirect and stops the handler chain.
func AbortRedirect(c *gin.Context, statusCode int, code string, message string, notice *Notice, redirect *RedirectTo) {
	Redirect(c, statusCode, code, message, notice, redirect)
	c.Abort()
}
