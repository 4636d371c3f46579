package utils

import "unicode/utf8"

// IsUsernameValid enforces the username policy (3–50 characters).
func IsUsernameValid(u string) bool {
	n := utf8.RuneCountInString(u)
	return n >= 3 && n <= 50
}

// IsPasswordValid enforces the password policy (6–50 characters).
func IsPasswordValid(p string) bool {
	n := utf8.RuneCountInString(p)
	return n >= 6 && n <= 50
}

// IsNicknameValid enforces the nickname policy (at most 100 characters;
// empty is allowed and defaults to the username downstream).
func IsNicknameValid(n string) bool {
	return utf8.RuneCountInString(n) <= 100
}
