package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of roles a user can hold. Roles are numerically
// encoded for storage and token claims: Patient=1, Professional=2, Admin=3.
type Role int

const (
	RolePatient      Role = 1
	RoleProfessional Role = 2
	RoleAdmin        Role = 3
)

// Roles lists every valid role.
var Roles = []Role{RolePatient, RoleProfessional, RoleAdmin}

func (r Role) String() string {
	switch r {
	case RolePatient:
		return "Patient"
	case RoleProfessional:
		return "Professional"
	case RoleAdmin:
		return "Admin"
	default:
		return "Unknown"
	}
}

// ID returns the numeric encoding of the role.
func (r Role) ID() int {
	return int(r)
}

// RoleFromID maps a numeric role id back to a Role. The boolean is false for
// unrecognized ids.
func RoleFromID(id int) (Role, bool) {
	switch id {
	case 1:
		return RolePatient, true
	case 2:
		return RoleProfessional, true
	case 3:
		return RoleAdmin, true
	default:
		return RolePatient, false
	}
}

// User represents an account in the system. PasswordHash is never serialized
// outward.
type User struct {
	ID              uuid.UUID  `json:"id"`
	Username        string     `json:"username"`
	Usersurname     string     `json:"usersurname"`
	Email           string     `json:"email"`
	Role            Role       `json:"role"`
	Verified        bool       `json:"verified"`
	NeedsOnboarding bool       `json:"needs_onboarding"`
	PasswordHash    string     `json:"-"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}
