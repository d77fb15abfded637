package models

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is a user's role. The set is closed.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleUser    Role = "User"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleManager, RoleUser}

// ParseRole converts s to a Role, rejecting anything outside the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// User represents a user in the system
type User struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"` // Never return password in JSON
	Role           Role      `json:"role" db:"role"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// UserPatch carries the fields of a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Name  *string
	Email *string
	Role  *Role
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil
}

// UserSummary is the {id, name} shape used for task creator/assignee.
type UserSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Summary returns the embedded representation of the user.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name}
}

// UserView is a user joined with its organization.
type UserView struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Email        string               `json:"email"`
	Role         Role                 `json:"role"`
	Organization *OrganizationSummary `json:"organization"`
}

// NewUserView joins u with org. org may be nil when the organization was deleted.
func NewUserView(u *User, org *Organization) *UserView {
	return &UserView{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Organization: org.Summary(),
	}
}

// Actor is the authenticated identity an operation runs as.
type Actor struct {
	UserID         string `json:"user_id"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organization_id"`
}

// TokenClaims represents the JWT token claims
type TokenClaims struct {
	Role           Role   `json:"role"`
	OrganizationID string `json:"organization"`
	jwt.RegisteredClaims
}

// Actor extracts the identity carried by the claims.
func (c *TokenClaims) Actor() *Actor {
	return &Actor{
		UserID:         c.Subject,
		Role:           c.Role,
		OrganizationID: c.OrganizationID,
	}
}
