package identity

import "errors"

// Stable error codes returned by a Provider.
const (
	CodeEmailAlreadyInUse       = "auth/email-already-in-use"
	CodeInvalidEmail            = "auth/invalid-email"
	CodeWeakPassword            = "auth/weak-password"
	CodeUserNotFound            = "auth/user-not-found"
	CodeWrongPassword           = "auth/wrong-password"
	CodeTooManyRequests         = "auth/too-many-requests"
	CodeInvalidPhoneNumber      = "auth/invalid-phone-number"
	CodeCaptchaCheckFailed      = "auth/captcha-check-failed"
	CodeMissingVerificationID   = "auth/missing-verification-id"
	CodeInvalidVerificationCode = "auth/invalid-verification-code"
	CodeCodeExpired             = "auth/code-expired"
	CodeSessionExpired          = "auth/session-expired"
	CodeQuotaExceeded           = "auth/quota-exceeded"
)

// Error is a provider failure with a stable code and the provider's raw message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf returns the provider code carried by err, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err is a provider error with the given code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
