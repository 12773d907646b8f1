package utils

import (
	"errors"
	"time"

	"winqroo/config"

	"github.com/golang-jwt/jwt/v5"
)

func secretKey() []byte {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = "WINQROO"
	}
	return []byte(secret)
}

// GenerateToken creates a signed JWT token with the given subject (userID), role
// (customer or shop_owner) and customer tier. The token expires after the
// specified duration.
func GenerateToken(subject, role, customerType string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":           subject,
		"role":          role,
		"customer_type": customerType,
		"iat":           time.Now().Unix(),
		"exp":           time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ExtractIdentityFromToken extracts the subject, role and customer tier from a
// valid JWT token string.
func ExtractIdentityFromToken(tokenString string) (userID, role, customerType string, err error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", "", errors.New("token does not contain a valid 'sub' claim")
	}
	role, _ = claims["role"].(string)
	customerType, _ = claims["customer_type"].(string)

	return sub, role, customerType, nil
}
