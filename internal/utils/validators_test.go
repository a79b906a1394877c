package utils

import "testing"

func TestValidUsername(t *testing.T) {
	valid := []string{"abc", "user_1", "Some_Long_Username_30_chars_xx"}

	for _, username := range valid {
		if !ValidUsername(username) {
			t.Errorf("ValidUsername(%q) = false, want true", username)
		}
	}

	invalid := []string{"", "ab", "has space", "dash-user", "тест", "this_username_is_way_too_long_to_pass"}

	for _, username := range invalid {
		if ValidUsername(username) {
			t.Errorf("ValidUsername(%q) = true, want false", username)
		}
	}
}

func TestValidPassword(t *testing.T) {
	valid := []string{"secret1", "a1b2c3", "longpassword9"}

	for _, password := range valid {
		if !ValidPassword(password) {
			t.Errorf("ValidPassword(%q) = false, want true", password)
		}
	}

	invalid := []string{"", "abc1", "a1", "onlyletters", "1234567"}

	for _, password := range invalid {
		if ValidPassword(password) {
			t.Errorf("ValidPassword(%q) = true, want false", password)
		}
	}
}

func TestValidateRegistration(t *testing.T) {
	if errs := ValidateRegistration("alice", "alice@example.com", "secret1", "secret1"); len(errs) != 0 {
		t.Errorf("valid registration produced errors: %v", errs)
	}

	errs := ValidateRegistration("a", "bad", "x", "y")

	if len(errs) != 4 {
		t.Errorf("got %d errors, want 4: %v", len(errs), errs)
	}
}
