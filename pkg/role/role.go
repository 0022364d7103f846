// Package role holds the permission class of a subject and the store that persists it.
package role

import (
	"errors"
	"strings"
)

// Role is the permission class driving both the visible menu and page access.
type Role string

const (
	User   Role = "User"
	Lawyer Role = "Lawyer"
	Judge  Role = "Judge"
)

// Fallback is returned whenever a persisted value is missing or not a known role.
const Fallback = User

var ErrInvalidRole = errors.New("invalid role")

// All lists the closed set in a stable order.
func All() []Role {
	return []Role{User, Lawyer, Judge}
}

// Parse maps a raw value onto the closed set, ignoring case and surrounding space.
func Parse(raw string) (Role, error) {
	v := strings.TrimSpace(raw)
	for _, r := range All() {
		if strings.EqualFold(v, string(r)) {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

func (r Role) Valid() bool {
	_, err := Parse(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}

// Matches compares against a role claim case-insensitively.
func (r Role) Matches(claim string) bool {
	return strings.EqualFold(strings.TrimSpace(claim), string(r))
}

// DefaultPath is the page a subject lands on after switching to r.
func DefaultPath(r Role) string {
	switch r {
	case Lawyer:
		return "/advocate-diary"
	case Judge:
		return "/transcript"
	default:
		return "/summarisation"
	}
}
