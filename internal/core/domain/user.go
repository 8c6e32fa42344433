package domain

import (
	"strings"
	"time"
)

// DefaultAdminMarker is the username fragment that grants the admin role at
// registration when no other marker is configured.
const DefaultAdminMarker = "admin"

// User models a registered account. Role is fixed when the user is created.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdminUsername reports whether username carries the admin marker.
// Matching is case-insensitive; an empty marker never grants admin.
//
// Anyone who can pick a username containing the marker becomes an admin.
// That is the catalogue's existing business rule and is kept as-is.
func IsAdminUsername(username, marker string) bool {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return false
	}
	return strings.Contains(strings.ToLower(username), strings.ToLower(marker))
}

// Principal is the identity attached to a request after its token has been
// verified and the user re-read from the store.
type Principal struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

// PrincipalOf derives a Principal from the current user record.
func PrincipalOf(u *User) *Principal {
	return &Principal{
		UserID:   u.ID,
		Username: u.Username,
		FullName: u.FullName,
		IsAdmin:  u.IsAdmin,
	}
}
