package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]{10,}$`)
)

const (
	MinPasswordLength = 6
	MinFullNameLength = 2
)

func init() {
	validate = validator.New()
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range errs {
		errors[err.Field()] = err.Tag()
	}
	return errors
}

// ValidateEmail accepts local@domain.tld shaped strings.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone accepts digits, spaces, '+', '-' and parentheses, at least 10 characters.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidatePassword and ValidateFullName count characters, not bytes.
func ValidatePassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

func ValidateFullName(name string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(name)) >= MinFullNameLength
}
