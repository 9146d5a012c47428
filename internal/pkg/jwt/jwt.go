package jwt

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
)

const TokenTypeAccess = "access"

var ErrInvalidClaims = errors.New("token is missing required claims")

// Claims is the identity carried by an access token.
type Claims struct {
	UserID         string
	Email          string
	OrganizationID string
	Role           user.Role
	TokenID        string
	Type           string
}

type Service interface {
	GenerateAccessToken(u user.User) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	ClaimsFromContext(ctx context.Context) (Claims, error)
	RevokeToken(tokenID string)
	IsTokenRevoked(tokenID string) bool
	AccessTTL() time.Duration
}

type JWTService struct {
	accessTTL     time.Duration
	tokenAuth     *jwtauth.JWTAuth
	revokedTokens map[string]int64
	mu            sync.RWMutex
	now           func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) AccessTTL() time.Duration {
	return j.accessTTL
}

func NewJWTService(secretKey string, accessTTL time.Duration) *JWTService {
	return &JWTService{
		accessTTL:     accessTTL,
		tokenAuth:     jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens: make(map[string]int64),
		now:           time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(u user.User) (token string, expiresAt int64, err error) {
	exp := j.now().Add(j.accessTTL)

	claims := map[string]interface{}{
		"jti":             uuid.NewString(),
		"user_id":         u.ID,
		"email":           u.Email,
		"organization_id": u.OrganizationID,
		"role":            string(u.Role),
		"type":            TokenTypeAccess,
	}
	jwtauth.SetIssuedAt(claims, j.now())
	jwtauth.SetExpiry(claims, exp)

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, exp.Unix(), err
}

// ClaimsFromContext reads claims placed on ctx by jwtauth.Verifier.
func (j *JWTService) ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, raw, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, err
	}

	var c Claims
	var ok bool
	if c.UserID, ok = raw["user_id"].(string); !ok || c.UserID == "" {
		return Claims{}, ErrInvalidClaims
	}
	if c.OrganizationID, ok = raw["organization_id"].(string); !ok || c.OrganizationID == "" {
		return Claims{}, ErrInvalidClaims
	}
	role, _ := raw["role"].(string)
	c.Role = user.Role(role)
	c.Email, _ = raw["email"].(string)
	c.TokenID, _ = raw["jti"].(string)
	c.Type, _ = raw["type"].(string)

	return c, nil
}

func (j *JWTService) RevokeToken(tokenID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[tokenID] = j.now().Unix()
}

func (j *JWTService) IsTokenRevoked(tokenID string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[tokenID]
	return revoked
}
