package auth

import (
	"errors"
	"net/http"

	"suryawash/internal/identity"
)

// Local failure codes. Provider failures keep their identity code.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeAccountDeactivated = "ACCOUNT_DEACTIVATED"
	CodeAdminRequired      = "ADMIN_REQUIRED"
	CodeProfileNotFound    = "PROFILE_NOT_FOUND"
	CodeChallengeRequired  = "CHALLENGE_REQUIRED"
)

const (
	MsgInvalidFullName    = "Please enter a valid full name"
	MsgInvalidEmail       = "Please enter a valid email address"
	MsgInvalidPhone       = "Please enter a valid phone number"
	MsgShortPassword      = "Password must be at least 6 characters long"
	MsgMissingPassword    = "Please enter your password"
	MsgAccountDeactivated = "Your account has been deactivated. Please contact support."
	MsgAdminRequired      = "Access denied. Admin privileges required."
	MsgProfileNotFound    = "User data not found"
	MsgChallengeRequired  = "Please complete the verification challenge first"
	MsgMissingCode        = "Please enter the 6-digit verification code"
	MsgRequestCodeFirst   = "Please request a verification code first."
	MsgSessionExpired     = "Session expired. Please login again."
)

var ErrUnauthorized = errors.New("unauthorized")

// Failure is a workflow error carrying the message the user sees.
type Failure struct {
	Code    string
	Message string
	cause   error
}

func (f *Failure) Error() string { return f.Message }
func (f *Failure) Unwrap() error { return f.cause }

func fail(code, message string) *Failure {
	return &Failure{Code: code, Message: message}
}

// friendly maps provider errors through messages; unknown codes keep the raw provider message.
func friendly(err error, messages map[string]string) error {
	var pe *identity.Error
	if !errors.As(err, &pe) {
		return err
	}
	msg, ok := messages[pe.Code]
	if !ok {
		msg = pe.Message
	}
	return &Failure{Code: pe.Code, Message: msg, cause: err}
}

var registerMessages = map[string]string{
	identity.CodeEmailAlreadyInUse: "This email is already registered. Please login instead.",
	identity.CodeInvalidEmail:      "Invalid email address format.",
	identity.CodeWeakPassword:      "Password is too weak. Please use a stronger password.",
}

var loginMessages = map[string]string{
	identity.CodeUserNotFound:    "No account found with this email. Please register first.",
	identity.CodeWrongPassword:   "Incorrect password. Please try again.",
	identity.CodeTooManyRequests: "Too many failed attempts. Please try again later.",
}

var adminLoginMessages = map[string]string{
	identity.CodeUserNotFound:    "No account found with this email.",
	identity.CodeWrongPassword:   "Incorrect password.",
	identity.CodeTooManyRequests: "Too many failed attempts. Please try again later.",
}

var phoneMessages = map[string]string{
	identity.CodeInvalidPhoneNumber:      "Invalid phone number. Please check the number and try again.",
	identity.CodeCaptchaCheckFailed:      "Verification challenge failed or expired. Please try again.",
	identity.CodeTooManyRequests:         "Too many attempts. Please try again later.",
	identity.CodeMissingVerificationID:   MsgRequestCodeFirst,
	identity.CodeInvalidVerificationCode: "Invalid verification code. Please try again.",
	identity.CodeCodeExpired:             "The verification code has expired. Please request a new one.",
	identity.CodeQuotaExceeded:           "We could not send a code right now. Please try again later.",
}

var failureStatus = map[string]int{
	CodeValidation:                       http.StatusBadRequest,
	CodeAccountDeactivated:               http.StatusForbidden,
	CodeAdminRequired:                    http.StatusForbidden,
	CodeProfileNotFound:                  http.StatusNotFound,
	CodeChallengeRequired:                http.StatusBadRequest,
	identity.CodeEmailAlreadyInUse:       http.StatusConflict,
	identity.CodeInvalidEmail:            http.StatusBadRequest,
	identity.CodeWeakPassword:            http.StatusBadRequest,
	identity.CodeUserNotFound:            http.StatusNotFound,
	identity.CodeWrongPassword:           http.StatusUnauthorized,
	identity.CodeTooManyRequests:         http.StatusTooManyRequests,
	identity.CodeInvalidPhoneNumber:      http.StatusBadRequest,
	identity.CodeCaptchaCheckFailed:      http.StatusBadRequest,
	identity.CodeMissingVerificationID:   http.StatusBadRequest,
	identity.CodeInvalidVerificationCode: http.StatusBadRequest,
	identity.CodeCodeExpired:             http.StatusGone,
	identity.CodeSessionExpired:          http.StatusUnauthorized,
	identity.CodeQuotaExceeded:           http.StatusServiceUnavailable,
}

// StatusFor returns the HTTP status for a failure code.
func StatusFor(code string) int {
	if status, ok := failureStatus[code]; ok {
		return status
	}
	return http.StatusBadRequest
}
