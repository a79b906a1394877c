package utils

import "regexp"

var (
	emailFormat    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameFormat = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	hasLetter      = regexp.MustCompile(`[A-Za-z]`)
	hasDigit       = regexp.MustCompile(`\d`)
)

func ValidEmail(email string) bool {
	return emailFormat.MatchString(email)
}

func ValidUsername(username string) bool {
	return usernameFormat.MatchString(username)
}

// ValidPassword requires at least 6 characters including a letter and a
// digit.
func ValidPassword(password string) bool {
	return len(password) >= 6 && hasLetter.MatchString(password) && hasDigit.MatchString(password)
}

// ValidateRegistration collects every validation failure so the client can
// show them all at once.
func ValidateRegistration(username, email, password, confirmPassword string) []string {
	var errs []string

	if !ValidUsername(username) {
		errs = append(errs, "Username must be 3-30 characters (letters, digits, underscore)")
	}

	if !ValidEmail(email) {
		errs = append(errs, "Enter a valid email address")
	}

	if !ValidPassword(password) {
		errs = append(errs, "Password must be at least 6 characters and contain a letter and a digit")
	}

	if password != confirmPassword {
		errs = append(errs, "Passwords do not match")
	}

	return errs
}
