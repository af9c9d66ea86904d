// Package authtoken issues and verifies the bearer tokens that carry a
// page principal.
package authtoken

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
	Staff       bool     `json:"staff,omitempty"`
	Superuser   bool     `json:"superuser,omitempty"`
	Permissions []string `json:"perms,omitempty"`
}

type Signer struct {
	secret []byte
	issuer string
}

func NewSigner(secret, issuer string) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Signer{secret: []byte(secret), issuer: strings.TrimSpace(issuer)}, nil
}

func (s *Signer) Issue(p pages.Principal, ttl time.Duration) (string, error) {
	if p.UserID == uuid.Nil {
		return "", fmt.Errorf("%w: principal has no user id", ErrInvalidToken)
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Staff:       p.Staff,
		Superuser:   p.Superuser,
		Permissions: p.Permissions,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies tokenString and returns the authenticated principal it
// carries.
func (s *Signer) Parse(tokenString string) (pages.Principal, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return pages.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return pages.Principal{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return pages.Principal{}, fmt.Errorf("%w: subject: %w", ErrInvalidToken, err)
	}
	return pages.Principal{
		UserID:        userID,
		Authenticated: true,
		Staff:         claims.Staff,
		Superuser:     claims.Superuser,
		Permissions:   claims.Permissions,
	}, nil
}
