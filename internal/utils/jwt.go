package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// ErrWrongTokenType is returned when a token of one type is presented as another.
var ErrWrongTokenType = errors.New("unexpected token type")

type jwtCustomClaims struct {
	UserID    string    `json:"user_id"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is what a successful login or refresh hands back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// GenerateToken creates a signed JWT for the provided user ID.
func GenerateToken(secret string, userID uuid.UUID, tokenType TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &jwtCustomClaims{
		UserID:    userID.String(),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// IssuePair signs a fresh access and refresh token for userID.
func IssuePair(secret string, userID uuid.UUID, accessTTL, refreshTTL time.Duration) (TokenPair, error) {
	access, err := GenerateToken(secret, userID, AccessToken, accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := GenerateToken(secret, userID, RefreshToken, refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ParseToken validates the token and returns the embedded user ID.
func ParseToken(secret, tokenString string, expected TokenType) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	if claims.TokenType != expected {
		return uuid.Nil, ErrWrongTokenType
	}

	return uuid.Parse(claims.UserID)
}
