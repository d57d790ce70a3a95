package models

import "time"

// Roles a user account can hold.
const (
	RoleUser      = "user"
	RoleDeveloper = "developer"
	RoleAdmin     = "admin"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// Argon2id hash, never serialized
	PasswordHash string `json:"-"`
}

// UserRef is the expanded form of a user reference embedded in API responses.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Caller is the authenticated identity attached to a request by the auth
// middleware. Handlers and services authorize against it, never against the
// raw user record.
type Caller struct {
	ID   string
	Name string
	Role string
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }
