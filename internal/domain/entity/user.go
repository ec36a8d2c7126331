package entity

import "time"

// Role is the authorization role carried by a User and embedded in tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the aggregate root for the user domain.
// Password holds a bcrypt hash and must never be serialized in responses.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	Role      Role
	IsBlocked bool
	Bio       string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}
