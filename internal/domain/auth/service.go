package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"mobilebill/internal/core/apperror"
	"mobilebill/pkg/logger"
)

// Service authenticates the configured users.
type Service struct {
	users map[string]*User
	jwt   *JWTService
}

// NewService hashes the given passwords once. An empty password disables that user.
func NewService(jwtService *JWTService, adminPassword, staffPassword string) (*Service, error) {
	s := &Service{users: make(map[string]*User), jwt: jwtService}
	for _, u := range []struct{ name, role, password string }{
		{"admin", RoleAdmin, adminPassword},
		{"staff", RoleStaff, staffPassword},
	} {
		if u.password == "" {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", u.name, err)
		}
		s.users[u.name] = &User{Username: u.name, Role: u.role, PasswordHash: string(hash)}
	}
	return s, nil
}

// Login checks credentials and issues a token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	user, ok := s.users[creds.Username]
	if !ok {
		logger.Warn(ctx, "login failed", "username", creds.Username, "reason", "unknown user")
		return nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		logger.Warn(ctx, "login failed", "username", creds.Username, "reason", "wrong password")
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	logger.Info(ctx, "user logged in", "username", user.Username, "role", user.Role)
	return &LoginResult{Token: token, ExpiresAt: expiresAt.Unix(), User: user}, nil
}
