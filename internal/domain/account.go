package domain

import "time"

// Role discriminates the two kinds of account. Farmers and administrators
// share one account table and are told apart only by this value.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleFarmer || r == RoleAdmin
}

// Account is an authenticated principal.
type Account struct {
	ID           int64     `json:"id"`
	Phone        string    `json:"phone"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor identifies who performs a use case. It is built from verified token
// claims by the HTTP layer.
type Actor struct {
	AccountID int64
	Role      Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
