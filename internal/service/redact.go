package service

import "strings"

// maskEmailAddress keeps the first and last character of the local part for log output.
func maskEmailAddress(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return "***"
	}

	switch runes := []rune(local); {
	case len(runes) == 0:
		local = "***"
	case len(runes) <= 2:
		local = string(runes[:1]) + "***"
	default:
		local = string(runes[:1]) + "***" + string(runes[len(runes)-1:])
	}
	return local + "@" + domain
}
