package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"mobilebill/internal/domain/auth"
	"mobilebill/internal/infrastructure/http/v1/dto"
)

// Authenticator issues tokens for valid credentials.
type Authenticator interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.LoginResult, error)
}

// AuthHandler handles /api/auth.
type AuthHandler struct {
	*BaseHandler
	service Authenticator
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service Authenticator) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, res)
}
