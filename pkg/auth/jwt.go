package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Portainer user roles as encoded in the token.
const (
	RoleAdministrator = 1
	RoleStandard      = 2
)

// Claims are the fields Portainer puts in its session token.
type Claims struct {
	UserID    int
	Username  string
	Role      int
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// ParseClaims parses a JWT WITHOUT validation (for claim inspection only).
// It fails only for malformed tokens, not for expired or unsigned ones.
func ParseClaims(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("failed to extract claims from token")
	}

	c := &Claims{}
	if id, ok := claims["id"].(float64); ok {
		c.UserID = int(id)
	}
	if username, ok := claims["username"].(string); ok {
		c.Username = username
	}
	if role, ok := claims["role"].(float64); ok {
		c.Role = int(role)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}

	return c, nil
}

// RoleName returns a readable role.
func (c *Claims) RoleName() string {
	switch c.Role {
	case RoleAdministrator:
		return "administrator"
	case RoleStandard:
		return "standard"
	default:
		return "unknown"
	}
}

// Expired reports whether the token expired before now. Tokens without an
// expiry never expire.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
