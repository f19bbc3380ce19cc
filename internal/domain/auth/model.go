// Package auth provides login for the shop's two configured users.
package auth

import (
	"strings"

	"mobilebill/internal/core/apperror"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is a configured account. Passwords only exist as bcrypt hashes.
type User struct {
	Username     string `json:"username"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}

// Credentials is the login request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks both fields are present.
func (c *Credentials) Validate() error {
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" || c.Password == "" {
		return apperror.NewValidation("username and password are required")
	}
	return nil
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	User      *User  `json:"user"`
}
