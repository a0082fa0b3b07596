// Package server provides the HTTP REST API for the CV alignment service.
package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonathan/cv-align/internal/config"
)

// ApprovalClaims binds a signed review token to one run.
type ApprovalClaims struct {
	RunID uuid.UUID `json:"run_id"`
	jwt.RegisteredClaims
}

// ApprovalTokenService mints and validates the signed tokens embedded
// in review links. Tokens are scoped to a single run and expire.
type ApprovalTokenService struct {
	config *config.JWTConfig
}

// NewApprovalTokenService creates the service over the JWT configuration.
func NewApprovalTokenService(cfg *config.JWTConfig) *ApprovalTokenService {
	return &ApprovalTokenService{config: cfg}
}

// Sign mints a review token for the run.
func (s *ApprovalTokenService) Sign(runID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &ApprovalClaims{
		RunID: runID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.config.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign approval token: %w", err)
	}
	return signed, nil
}

// Validate parses a review token and returns the run it authorizes.
func (s *ApprovalTokenService) Validate(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, fmt.Errorf("token string is empty")
	}

	claims := &ApprovalClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("approval token expired: %w", err)
		}
		return uuid.Nil, fmt.Errorf("invalid approval token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, fmt.Errorf("approval token is not valid")
	}
	if claims.RunID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("approval token carries no run")
	}
	return claims.RunID, nil
}
