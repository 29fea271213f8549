// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
)

// MinPasswordLen is the minimum accepted password length. It drives both the
// rule and the error message so the two can never drift apart.
const MinPasswordLen = 6

// MaxPasswordLen caps password length to prevent unreasonable inputs.
const MaxPasswordLen = 128

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if an email address has a plausible format.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("please include a valid email")
	}
	return nil
}

// ValidatePassword checks if a password meets the length requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("please enter a password with %d or more characters", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLen)
	}
	return nil
}

// PostTextLimits bound the length of a post body.
const (
	MinPostTextLen = 1
	MaxPostTextLen = 300
)

// ValidatePostText checks a post body against the accepted length range.
func ValidatePostText(text string) error {
	if len(text) < MinPostTextLen || len(text) > MaxPostTextLen {
		return fmt.Errorf("post text must be between %d and %d characters", MinPostTextLen, MaxPostTextLen)
	}
	return nil
}
