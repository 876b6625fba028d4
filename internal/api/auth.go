package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// adminAuthMiddleware guards the operator endpoints with HS256 bearer
// tokens. The subject claim names the operator in the log line.
func adminAuthMiddleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == "OPTIONS" {
				next.ServeHTTP(w, r)
				return
			}

			sub, err := verifyAdminToken(key, r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, http.StatusUnauthorized, 401, err.Error(), "")
				return
			}

			log.Printf("[api] admin %s: %s %s", sub, r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}

func verifyAdminToken(key []byte, authHeader string) (string, error) {
	if authHeader == "" {
		return "", fmt.Errorf("missing Authorization header")
	}

	tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

	token, err := jwtlib.Parse(tokenStr, func(token *jwtlib.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("token missing sub claim")
	}

	return sub, nil
}
