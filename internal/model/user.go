package model

import "time"

// User represents a library member or administrator.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Gender       string     `json:"gender,omitempty"`
	DateOfBirth  string     `json:"date_of_birth,omitempty"`
	Provider     string     `json:"provider,omitempty"`
	ProviderUID  string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Genders accepted on registration and profile update.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:  2,
		RoleMember: 1,
	}
	return levels[role] >= levels[minimum]
}

// ValidGender reports whether g is an accepted gender value.
// Empty is allowed, the field is optional.
func ValidGender(g string) bool {
	return g == "" || g == GenderMale || g == GenderFemale || g == GenderOther
}
