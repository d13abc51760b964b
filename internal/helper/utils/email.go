package utils

import "strings"

// NormalizeEmail lowercases and trims an address so lookups and the
// unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
