package identity

import (
	"net/mail"
	"regexp"
	"unicode/utf8"
)

// Validation limits for account fields.
const (
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt ignores the rest
	minUsernameLen = 3
	maxUsernameLen = 30
	maxFullNameLen = 100
	maxEmailLen    = 254
)

var usernameRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// validateSignUp checks normalized sign-up inputs and returns the first
// error found.
func validateSignUp(in SignUpInput) string {
	if in.Email == "" {
		return "Email is required."
	}
	if len(in.Email) > maxEmailLen {
		return "Email is too long."
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return "Email address is not valid."
	}
	if len(in.Password) < minPasswordLen {
		return "Password must be at least 6 characters."
	}
	if len(in.Password) > maxPasswordLen {
		return "Password is too long (max 72 bytes)."
	}
	n := utf8.RuneCountInString(in.Username)
	if n < minUsernameLen || n > maxUsernameLen {
		return "Username must be 3 to 30 characters."
	}
	if !usernameRe.MatchString(in.Username) {
		return "Username may only contain lowercase letters, digits and underscores."
	}
	if utf8.RuneCountInString(in.FullName) > maxFullNameLen {
		return "Full name is too long (max 100 characters)."
	}
	return ""
}
