package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobilebill/internal/core/apperror"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(NewJWTService(DefaultJWTConfig("test-secret")), "admin-pw", "")
	require.NoError(t, err)
	return svc
}

func TestLogin_IssuesValidToken(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Login(context.Background(), Credentials{Username: " admin ", Password: "admin-pw"})
	require.NoError(t, err)
	assert.Equal(t, "admin", res.User.Username)
	assert.NotEmpty(t, res.Token)

	user, err := svc.jwt.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, RoleAdmin, user.Role)
}

func TestLogin_Rejects(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		creds Credentials
		code  string
	}{
		{"wrong password", Credentials{Username: "admin", Password: "nope"}, apperror.CodeUnauthorized},
		{"unknown user", Credentials{Username: "root", Password: "admin-pw"}, apperror.CodeUnauthorized},
		{"disabled user", Credentials{Username: "staff", Password: ""}, apperror.CodeValidation},
		{"missing fields", Credentials{}, apperror.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.creds)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestValidateToken_ExpiredAndForeign(t *testing.T) {
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	past := time.Now().Add(-24 * time.Hour)
	jwtSvc.now = func() time.Time { return past }
	token, _, err := jwtSvc.GenerateAccessToken(&User{Username: "staff", Role: RoleStaff})
	require.NoError(t, err)

	jwtSvc.now = time.Now
	_, err = jwtSvc.ValidateToken(token)
	assert.Error(t, err)

	other := NewJWTService(DefaultJWTConfig("other-secret"))
	fresh, _, err := other.GenerateAccessToken(&User{Username: "staff", Role: RoleStaff})
	require.NoError(t, err)
	_, err = jwtSvc.ValidateToken(fresh)
	assert.Error(t, err)
}
