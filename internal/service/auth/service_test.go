package auth

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamzen/hris-backend-go/internal/domain/auth"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/pkg/jwt"
	"github.com/teamzen/hris-backend-go/internal/pkg/testutil"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-jwt"

func newAuthFixture(t *testing.T) (*AuthServiceImpl, *jwt.JWTService, user.User) {
	t.Helper()

	store := testutil.NewStore(t)
	org := testutil.CreateOrganization(t, store, "Acme")
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	member := testutil.CreateUser(t, store, org.ID, "login@acme.test",
		testutil.WithPasswordHash(string(hash)), testutil.WithRole(user.RoleManager))

	jwtService := jwt.NewJWTService(testSecret, time.Hour)
	return NewAuthService(store.Users(), jwtService), jwtService, member
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	service, jwtService, member := newAuthFixture(t)

	// Act
	response, err := service.Login(ctx, auth.LoginRequest{Email: " Login@Acme.test", Password: "password123"})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, response.AccessToken)
	assert.Equal(t, "Bearer", response.TokenType)
	assert.Equal(t, int64(3600), response.ExpiresIn)
	assert.Equal(t, member.ID, response.User.ID)

	parsed, err := jwtauth.VerifyToken(jwtService.JWTAuth(), response.AccessToken)
	require.NoError(t, err)
	claims, err := jwtService.ClaimsFromContext(jwtauth.NewContext(ctx, parsed, nil))
	require.NoError(t, err)
	assert.Equal(t, member.OrganizationID, claims.OrganizationID)
	assert.Equal(t, user.RoleManager, claims.Role)
	assert.Equal(t, jwt.TokenTypeAccess, claims.Type)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newAuthFixture(t)

	tests := []struct {
		name string
		req  auth.LoginRequest
	}{
		{"wrong password", auth.LoginRequest{Email: "login@acme.test", Password: "wrongpassword"}},
		{"unknown email", auth.LoginRequest{Email: "nobody@acme.test", Password: "password123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Login(ctx, tt.req)
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		})
	}
}

func TestAuthService_Login_Validation(t *testing.T) {
	service, _, _ := newAuthFixture(t)

	_, err := service.Login(context.Background(), auth.LoginRequest{Email: "not-an-email"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "password")
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	org := testutil.CreateOrganization(t, store, "Acme")
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	member := testutil.CreateUser(t, store, org.ID, "gone@acme.test", testutil.WithPasswordHash(string(hash)))
	require.NoError(t, store.Users().Deactivate(ctx, member.ID, testutil.Date(2025, time.June, 30)))

	service := NewAuthService(store.Users(), jwt.NewJWTService(testSecret, time.Hour))
	_, err = service.Login(ctx, auth.LoginRequest{Email: "gone@acme.test", Password: "password123"})

	assert.ErrorIs(t, err, auth.ErrAccountInactive)
}

func TestAuthService_Logout(t *testing.T) {
	service, jwtService, _ := newAuthFixture(t)

	require.NoError(t, service.Logout(context.Background(), "jti-1"))
	assert.True(t, jwtService.IsTokenRevoked("jti-1"))

	assert.ErrorIs(t, service.Logout(context.Background(), ""), auth.ErrInvalidTokenType)
}
