// Package auth validates platform-issued bearer tokens. Token issuance and
// the identity model live in the platform's identity service; this package
// only verifies signatures against the shared secret and extracts the
// student identity.
package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/studyloop/mastery-api/internal/config"
)

// Common errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrShortSecret  = errors.New("jwt secret must be at least 32 bytes")
)

// Claims carries the validated identity extracted from a bearer token.
type Claims struct {
	StudentID uuid.UUID
}

// JWTService defines the interface for validating bearer tokens.
type JWTService interface {
	// ValidateToken verifies the token signature and expiry and returns the
	// claims it carries. Returns ErrExpiredToken or ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// hmacJWTService validates HS256 tokens signed with a shared secret.
type hmacJWTService struct {
	secret []byte
}

// NewJWTService creates a JWTService from the auth configuration.
func NewJWTService(cfg *config.AuthConfig) (JWTService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, ErrShortSecret
	}

	return &hmacJWTService{
		secret: []byte(cfg.JWTSecret),
	}, nil
}

// ValidateToken implements the JWTService interface.
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return s.secret, nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	registered, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// The platform identity service puts the student ID in the subject.
	studentID, err := uuid.Parse(registered.Subject)
	if err != nil || studentID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	return &Claims{StudentID: studentID}, nil
}
