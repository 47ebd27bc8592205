// Package auth verifies the bearer tokens issued by the FastBite backend and
// turns their claims into a session identity.
//
// The role shown to a visitor is taken only from a token whose HS256
// signature checks out against JWT_SECRET; nothing the browser sends can
// grant admin.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/config"
)

var (
	// ErrNoSecret means JWT_SECRET is unset, so no token can be trusted.
	ErrNoSecret = errors.New("auth: JWT_SECRET is not configured")
	// ErrUnverifiedToken wraps every parse, signature or expiry failure.
	ErrUnverifiedToken = errors.New("auth: token could not be verified")
)

// Claims is the token payload. The backend has used several spellings for
// the identity fields over time; all are accepted.
type Claims struct {
	ID       string `json:"id,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// User maps verified claims to a session identity. A missing or unknown
// role yields a customer.
func (c *Claims) User() models.User {
	u := models.User{
		ID:       firstNonEmpty(c.ID, c.UserID, c.Subject),
		Username: firstNonEmpty(c.Username, c.Name, c.Email),
		Role:     models.RoleCustomer,
	}
	if strings.EqualFold(c.Role, string(models.RoleAdmin)) {
		u.Role = models.RoleAdmin
	}
	return u
}

// Verify parses token with the configured secret.
func Verify(token string) (*Claims, error) {
	return VerifyWithSecret(token, config.JWTSecret())
}

// VerifyWithSecret checks the HS256 signature and registered claims (exp, nbf).
func VerifyWithSecret(token, secret string) (*Claims, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnverifiedToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrUnverifiedToken
	}
	return claims, nil
}

// Sign issues an HS256 token. The server never mints tokens for real users;
// tests and the local fake backend use it.
func Sign(claims Claims, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
