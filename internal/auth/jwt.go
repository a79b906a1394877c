package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 7 * 24 * time.Hour

var (
	jwtSecret []byte
	tokenTTL  = defaultTokenTTL
)

// Claims carried by an access token. The user record is re-resolved from the
// database on every request, so only the identity travels in the token.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// InitJWTSecret loads the signing secret and optional token lifetime
// (JWT_TTL, a Go duration such as "72h") from the environment. Must be
// called before tokens are issued or verified.
func InitJWTSecret() error {
	secret := os.Getenv("JWT_SECRET")

	if secret == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}

	jwtSecret = []byte(secret)
	tokenTTL = defaultTokenTTL

	if raw := os.Getenv("JWT_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)

		if err != nil {
			return fmt.Errorf("parse JWT_TTL: %w", err)
		}

		if ttl <= 0 {
			return errors.New("JWT_TTL must be positive")
		}

		tokenTTL = ttl
	}

	return nil
}

// GenerateJWT issues a signed access token for the user.
func GenerateJWT(userID uint, email string) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// VerifyJWT checks the signature and expiry and returns the token's claims.
func VerifyJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
