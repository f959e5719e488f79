package dto

import "strings"

// Identity is the authenticated caller as described by the identity provider token.
type Identity struct {
	Subject   string `json:"sub"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// DisplayName joins first and last name, falling back to the full name claim and then the username.
func (i Identity) DisplayName() string {
	parts := make([]string, 0, 2)
	for _, part := range []string{i.FirstName, i.LastName} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	return strings.TrimSpace(i.Username)
}
