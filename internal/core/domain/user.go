package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role drives the access policy.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleEmployee Role = "EMPLOYEE"
)

// User is an authentication identity linked 1:1 to a Customer.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never expose
	CustomerID   uuid.UUID `json:"customer_id"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthContext is the identity the authentication layer resolved for a call.
// Policy checks read it; nothing in the core ever writes it.
type AuthContext struct {
	UserID     uuid.UUID
	CustomerID uuid.UUID
	Role       Role
}

// IsEmployee reports whether the actor holds the EMPLOYEE role.
func (a AuthContext) IsEmployee() bool {
	return a.Role == RoleEmployee
}
