package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role a session can carry.
const RoleAdmin = "admin"

const issuer = "pink-basket"

// SessionConfig holds the signing secret and lifetime of admin sessions
type SessionConfig struct {
	SigningKey string
	TTL        time.Duration
}

// SessionClaims represents the JWT claims of an admin session
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SessionUtil issues and verifies admin session tokens
type SessionUtil struct {
	config SessionConfig
	now    func() time.Time
}

func NewSessionUtil(config SessionConfig) *SessionUtil {
	return &SessionUtil{config: config, now: time.Now}
}

// Generate signs a new admin session token and returns it with its expiry.
func (s *SessionUtil) Generate() (string, time.Time, error) {
	if s.config.SigningKey == "" {
		return "", time.Time{}, errors.New("session signing key not configured")
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.config.TTL)
	claims := SessionClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SigningKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Validate parses tokenString and checks signature, expiry and role.
func (s *SessionUtil) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(s.config.SigningKey), nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Role != RoleAdmin {
		return nil, fmt.Errorf("unexpected role %q", claims.Role)
	}
	return claims, nil
}
