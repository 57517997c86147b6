// Package session issues and checks the bearer tokens that gate the dashboard.
package session

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet-monitor/internal/store"

	"github.com/coder/quartz"
	"github.com/golang-jwt/jwt/v4"
)

const issuer = "fleet-monitor"

type Config struct {
	Secret        string
	TTL           time.Duration
	AdminEmail    string
	AdminPassword string
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Claims struct {
	jwt.RegisteredClaims
}

type Service struct {
	cfg   Config
	clock quartz.Clock
}

func NewService(cfg Config, clock quartz.Clock) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Service{cfg: cfg, clock: clock}
}

// Login checks the designated admin account and returns a signed session token.
func (s *Service) Login(email, password string) (*LoginResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidRequest
	}
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(email)), []byte(strings.ToLower(s.cfg.AdminEmail))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
	if !emailOK || !passOK {
		return nil, ErrInvalidCredentials
	}
	return s.Issue(email)
}

func (s *Service) Issue(subject string) (*LoginResponse, error) {
	now := s.clock.Now()
	exp := now.Add(s.cfg.TTL)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		ID:        store.NewID("ses"),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &LoginResponse{Token: token, ExpiresAt: exp.UTC()}, nil
}

// Verify parses raw and checks signature, issuer and expiry.
func (s *Service) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !claims.VerifyIssuer(issuer, true) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
