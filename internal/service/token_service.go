package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/admissions-backend/internal/config"
)

// ErrInvalidToken is returned for tokens that fail signature, issuer or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Role identifies the kind of principal a token was issued to.
type Role string

const (
	RoleStudent          Role = "student"
	RoleInstitutionStaff Role = "institution_staff"
	RoleCompanyStaff     Role = "company_staff"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstitutionStaff, RoleCompanyStaff:
		return true
	}
	return false
}

// Claims extends JWT standard claims with the principal's role and organization.
type Claims struct {
	jwt.RegisteredClaims
	Role  Role      `json:"role"`
	OrgID uuid.UUID `json:"org_id,omitempty"` // Staff only: institution or company ID
}

// UserID returns the subject as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenService verifies bearer tokens from the identity provider and mints tokens for local use.
type TokenService struct {
	cfg *config.Config
	now func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{cfg: cfg, now: time.Now}
}

// IssueToken signs a token for the user. Staff roles require a non-nil organization.
func (s *TokenService) IssueToken(userID uuid.UUID, role Role, orgID uuid.UUID) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", role)
	}
	if role != RoleStudent && orgID == uuid.Nil {
		return "", fmt.Errorf("role %s requires an organization", role)
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.cfg.JWTIssuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Role:  role,
		OrgID: orgID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
// Expired tokens yield an error matching jwt.ErrTokenExpired.
func (s *TokenService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithIssuer(s.cfg.JWTIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleStudent && claims.OrgID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
