package utils

import (
	"errors"
	"fmt"
	"time"

	"taskhub-backend/pkg/apperr"
	"taskhub-backend/pkg/models"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the session token lifetime.
const DefaultTokenTTL = time.Hour

const tokenIssuer = "taskhub"

// JWTService issues and verifies session tokens.
type JWTService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewJWTService creates a JWT service. A non-positive ttl falls back to DefaultTokenTTL.
func NewJWTService(secretKey string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

// IssueToken signs a token carrying the user's identity, role and organization.
func (j *JWTService) IssueToken(userID string, role models.Role, organizationID string) (string, time.Time, error) {
	now := j.now()
	expiry := now.Add(j.ttl)

	jti, err := GenerateURLToken(16)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token id: %w", err)
	}

	claims := &models.TokenClaims{
		Role:           role,
		OrganizationID: organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiry, nil
}

// VerifyToken validates the token and returns the actor it carries. Any
// defect, including expiry, yields an Unauthenticated error.
func (j *JWTService) VerifyToken(tokenString string) (*models.Actor, error) {
	claims := &models.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Unauthenticated("Token expired")
		}
		return nil, apperr.Unauthenticated("Invalid token")
	}
	if !token.Valid {
		return nil, apperr.Unauthenticated("Invalid token")
	}

	if claims.Subject == "" || claims.OrganizationID == "" || !claims.Role.Valid() {
		return nil, apperr.Unauthenticated("Invalid token claims")
	}

	return claims.Actor(), nil
}
