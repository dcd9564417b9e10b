package auth

import "strings"

// AdminChecker decides whether a phone belongs to an administrator. The
// allow-list comes from configuration; there is no admin table.
type AdminChecker struct {
	phones map[string]struct{}
}

// NewAdminChecker builds the checker from the configured allow-list.
func NewAdminChecker(phones []string) *AdminChecker {
	allowed := make(map[string]struct{}, len(phones))
	for _, phone := range phones {
		phone = strings.TrimSpace(phone)
		if phone == "" {
			continue
		}
		allowed[phone] = struct{}{}
	}
	return &AdminChecker{phones: allowed}
}

// IsAdmin reports whether the phone is on the allow-list.
func (c *AdminChecker) IsAdmin(phone string) bool {
	_, ok := c.phones[strings.TrimSpace(phone)]
	return ok
}
