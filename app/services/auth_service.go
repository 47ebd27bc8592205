package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhonlemus05/FastBite-Delivery/app/client"
	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/auth"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/metrics"
)

// ErrDemoDisabled is returned by LoginDemo outside demo mode.
var ErrDemoDisabled = errors.New("auth: simulated login is disabled")

// AuthService signs visitors in against the backend.
type AuthService struct {
	api    client.Backend
	verify func(token string) (*auth.Claims, error)
	demo   bool
}

// NewAuthService builds the service. demo enables LoginDemo; callers pass
// config.AuthMode() == "demo".
func NewAuthService(api client.Backend, demo bool) *AuthService {
	return &AuthService{api: api, verify: auth.Verify, demo: demo}
}

// WithVerifier replaces the token verifier. Tests use it with a fixed secret.
func (s *AuthService) WithVerifier(fn func(token string) (*auth.Claims, error)) *AuthService {
	cp := *s
	cp.verify = fn
	return &cp
}

// DemoMode reports whether the simulated login is available.
func (s *AuthService) DemoMode() bool { return s.demo }

// Login exchanges credentials for a token and commits the identity carried by
// its verified claims. The entered email never influences the role.
func (s *AuthService) Login(ctx context.Context, st *store.Store, creds models.Credentials) (models.User, error) {
	creds.Email = strings.TrimSpace(creds.Email)

	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		metrics.Logins.WithLabelValues("", "rejected").Inc()
		return models.User{}, err
	}

	claims, err := s.verify(resp.Token)
	if err != nil {
		metrics.Logins.WithLabelValues("", "unverified").Inc()
		logger.WithCtx(ctx).Warn("login token rejected", "error", err)
		return models.User{}, fmt.Errorf("login: %w", err)
	}

	u := claims.User()
	if u.Username == "" {
		u.Username = creds.Email
	}
	st.SetSession(u, resp.Token)
	return u, nil
}

// LoginDemo signs in without contacting the backend.
func (s *AuthService) LoginDemo(st *store.Store, username string) (models.User, error) {
	if !s.demo {
		return models.User{}, ErrDemoDisabled
	}
	return st.LoginSimulated(username), nil
}

func (s *AuthService) Logout(st *store.Store) {
	st.Logout()
}
