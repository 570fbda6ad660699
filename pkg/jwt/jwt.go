package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Staff roles của dashboard
const (
	RoleAdmin     = "admin"
	RoleLibrarian = "librarian"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims represents JWT claims structure.
// StaffID là principal được ghi vào audit log (performedBy).
type Claims struct {
	StaffID string `json:"staff_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Type    string `json:"type"` // "access"
	jwt.RegisteredClaims
}

// Manager handles JWT operations
type Manager struct {
	secret   string
	issuer   string
	tokenTTL time.Duration
	now      func() time.Time
}

// NewManager creates new JWT manager
func NewManager(secret, issuer string, tokenTTL time.Duration) *Manager {
	return &Manager{
		secret:   secret,
		issuer:   issuer,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// GenerateAccessToken ký access token cho một staff account
func (m *Manager) GenerateAccessToken(staffID, email, role string) (string, error) {
	now := m.now()
	claims := Claims{
		StaffID: staffID,
		Email:   email,
		Role:    role,
		Type:    "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   staffID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

// ValidateToken validates and parses token
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateAccessToken validates access token specifically
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Type != "access" {
		return nil, fmt.Errorf("%w: expected access, got %s", ErrInvalidToken, claims.Type)
	}
	if claims.StaffID == "" {
		return nil, fmt.Errorf("%w: missing staff_id", ErrInvalidToken)
	}

	return claims, nil
}
