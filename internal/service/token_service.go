package service

import (
	"fmt"
	"time"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService implements ports.TokenService using HS256 JWT. The token
// carries the customer reference and role the access policy needs.
type JWTTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(secret string, expiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
	}
}

// Generate creates a signed JWT for the given user.
func (s *JWTTokenService) Generate(user *domain.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	claims := jwt.MapClaims{
		"sub":         user.ID.String(),
		"customer_id": user.CustomerID.String(),
		"role":        string(user.Role),
		"iat":         now.Unix(),
		"exp":         expiresAt.Unix(),
		"iss":         s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate parses and validates a JWT token, returning the claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("missing subject claim")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token: %w", err)
	}

	customerStr, ok := claims["customer_id"].(string)
	if !ok {
		return nil, fmt.Errorf("missing customer claim")
	}
	customerID, err := uuid.Parse(customerStr)
	if err != nil {
		return nil, fmt.Errorf("invalid customer ID in token: %w", err)
	}

	role, _ := claims["role"].(string)
	if role != string(domain.RoleCustomer) && role != string(domain.RoleEmployee) {
		return nil, fmt.Errorf("unknown role in token: %q", role)
	}

	return &ports.TokenClaims{
		UserID:     userID,
		CustomerID: customerID,
		Role:       domain.Role(role),
	}, nil
}
