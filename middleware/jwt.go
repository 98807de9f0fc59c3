package middleware

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

func jwtSecret() []byte {
	return []byte(os.Getenv("KEY"))
}

// IssueSocketToken signs a short-lived HS256 token carrying the user ID.
// Clients pass it in the socket.io handshake auth payload, session cookies
// do not survive the websocket upgrade on every client.
func IssueSocketToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// Socketio_JWT_decoder extracts and validates the token from the socket.io
// handshake auth map. Accepts both raw tokens and the "Bearer " prefix.
func Socketio_JWT_decoder(authData map[string]interface{}) (userID string, err error) {
	raw, ok := authData["authorization"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	raw = strings.TrimPrefix(raw, "Bearer ")

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
