package user

import "strings"

// Identity is the verified caller as asserted by the identity provider.
type Identity struct {
	UID   string
	Email string
	Name  string
}

func (i Identity) Valid() bool {
	return strings.TrimSpace(i.Email) != ""
}

// DisplayName prefers the asserted name and falls back to the email local part.
func (i Identity) DisplayName() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	return DefaultName(i.Email)
}
