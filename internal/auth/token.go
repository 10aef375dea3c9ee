package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenManager issues and validates HS256 JWT user signatures for SDKs that
// accept JWTs instead of TLS signatures.
type TokenManager struct {
	sdkAppID int64
	secret   []byte
	ttl      time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(sdkAppID int64, secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{sdkAppID: sdkAppID, secret: []byte(secret), ttl: ttl}
}

// Claims describes JWT payload.
type Claims struct {
	SDKAppID int64 `json:"sdkappid"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for userID issued at now.
func (tm *TokenManager) GenerateToken(userID string, now time.Time) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("empty user id")
	}
	issuedAt := now.Truncate(time.Second)
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		SDKAppID: tm.sdkAppID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates the signature and expiry at now and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string, now time.Time) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.SDKAppID != tm.sdkAppID {
		return nil, errors.New("sdkappid mismatch")
	}
	return claims, nil
}
