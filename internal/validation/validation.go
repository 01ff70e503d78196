package validation

import (
	"regexp"
	"strings"
	"time"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

var (
	emailRegex    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	nonDigitRegex = regexp.MustCompile(`\D`)
)

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool { return emailRegex.MatchString(s) }

// PhoneDigits reports whether s has 10 or 11 digits once formatting is stripped.
func PhoneDigits(s string) bool {
	digits := nonDigitRegex.ReplaceAllString(s, "")
	return len(digits) >= 10 && len(digits) <= 11
}

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// Email flags a malformed address. Empty values pass; combine with Required
// when the field is mandatory.
func Email(field, value string, v Violations) {
	if value != "" && !emailRegex.MatchString(value) {
		v[field] = "invalid_email"
	}
}

// Phone expects 10 or 11 digits once formatting characters are stripped.
func Phone(field, value string, v Violations) {
	if value == "" {
		return
	}
	digits := nonDigitRegex.ReplaceAllString(value, "")
	if len(digits) < 10 || len(digits) > 11 {
		v[field] = "invalid_phone"
	}
}

// PastDate rejects dates in the future (birthdates).
func PastDate(field string, value, now time.Time, v Violations) {
	if !value.IsZero() && value.After(now) {
		v[field] = "date_in_future"
	}
}

func MinLen(field, value string, n int, v Violations) {
	if len(strings.TrimSpace(value)) < n {
		v[field] = "too_short"
	}
}
