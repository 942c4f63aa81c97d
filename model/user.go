package model

import "time"

// Role identifies what a user is allowed to do in the label dashboard.
type Role string

const (
	// RoleManager has cross-user visibility and may change submission
	// statuses and manage accounts.
	RoleManager Role = "Label Manager"
	// RoleArtist manages only their own submissions and profile.
	RoleArtist Role = "Nghệ sĩ"
)

// User represents an account in the label directory.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	// PasswordHash is part of the persisted record; handlers must never
	// encode a User directly and should go through Public() instead.
	PasswordHash   string            `json:"passwordHash,omitempty"`
	Role           Role              `json:"role"`
	FullName       string            `json:"fullName"`
	Email          string            `json:"email"`
	Avatar         string            `json:"avatar,omitempty"`
	Bio            string            `json:"bio,omitempty"`
	SocialLinks    map[string]string `json:"socialLinks,omitempty"`
	ISRCCodePrefix string            `json:"isrcCodePrefix,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// IsManager reports whether the user holds the label-manager role.
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// Public returns a copy of the user with the credential stripped, safe to
// encode in API responses.
func (u *User) Public() User {
	pub := *u
	pub.PasswordHash = ""
	return pub
}
