package helpers

import "strings"

// MaskEmail hides most of the local part: "alice@example.com" -> "a***e@example.com".
// Used when confirming a reset token without leaking the full address.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	switch len(local) {
	case 1:
		return "*" + domain
	case 2:
		return string(local[0]) + "*" + domain
	default:
		return string(local[0]) + "***" + string(local[len(local)-1]) + domain
	}
}
