package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"toltimed/config"

	"github.com/golang-jwt/jwt"
)

// TokenIssuer is stamped into and required on every access token.
const TokenIssuer = "toltimed"

var (
	errNoSecret     = errors.New("JWT secret is not configured")
	errInvalidToken = errors.New("invalid token")
)

func secretKey() ([]byte, error) {
	if config.AppConfig.JWTSecret == "" {
		return nil, errNoSecret
	}
	return []byte(config.AppConfig.JWTSecret), nil
}

// GenerateToken signs an HS256 access token for subject (the user ID) valid for ttl.
func GenerateToken(subject string, ttl time.Duration) (string, error) {
	key, err := secretKey()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:   subject,
		Issuer:    TokenIssuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// HashToken computes a SHA-256 hash of the token string. Revocation entries are keyed by it.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateToken parses tokenString and checks its signature, expiry and issuer.
func ValidateToken(tokenString string) (*jwt.StandardClaims, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secretKey()
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || !claims.VerifyIssuer(TokenIssuer, true) {
		return nil, errInvalidToken
	}
	return claims, nil
}

// ExtractIDFromToken returns the subject of a valid token.
func ExtractIDFromToken(tokenString string) (string, error) {
	claims, err := ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}
	return claims.Subject, nil
}
