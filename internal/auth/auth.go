// Package auth provides JWT issuing, verification and the HTTP middleware
// guarding protected routes. Tokens travel in the Authorization header as a
// raw signed string, without a scheme prefix.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/sgorbunov/shrtaccounts/internal/logger"
	"github.com/sgorbunov/shrtaccounts/internal/models"
	"github.com/sgorbunov/shrtaccounts/internal/user"
)

// Claims represents the JWT claims carried by a session token.
// It embeds standard JWT claims and adds the identity fields of the account.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	MobileNo string `json:"mobileNo"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// ClaimsKey is the context key under which the middleware stores
// the verified claims of the authenticated user.
const ClaimsKey ContextKey = "authClaims"

// ErrMissingToken is returned when a protected route is hit without a token.
var ErrMissingToken = errors.New("authorization token is missing")

// ErrInvalidToken is returned for malformed, badly signed or expired tokens.
var ErrInvalidToken = errors.New("authorization token is invalid or expired")

// Auth verifies session tokens against the process-wide signing secret
// and issues new ones. The secret and TTL are injected at construction.
type Auth struct {
	tokenSigningSecretKey []byte
	tokenTTL              time.Duration
}

// New creates a new Auth with the given signing secret and token lifetime.
func New(tokenSigningSecretKey []byte, tokenTTL time.Duration) *Auth {
	return &Auth{
		tokenSigningSecretKey: tokenSigningSecretKey,
		tokenTTL:              tokenTTL,
	}
}

// BuildJWTString issues a signed token embedding the user's identity claims
// with an absolute expiry of now plus the configured TTL.
func (a *Auth) BuildJWTString(usr *user.User) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:   usr.ID,
		Name:     usr.Name,
		Email:    usr.Email,
		MobileNo: usr.MobileNo,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(a.tokenSigningSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of a token string
// and returns its claims. A pure function of (token, secret, current time).
func (a *Auth) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.tokenSigningSecretKey, nil
		},
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RequireUser is an HTTP middleware that rejects requests without a valid
// token and attaches the verified claims to the request context otherwise.
// A missing credential is reported as unauthorized, distinct from not-found.
func (a *Auth) RequireUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		tokenString := request.Header.Get("Authorization")
		if tokenString == "" {
			writeUnauthorized(response, "Authorization token is required!")

			return
		}

		claims, err := a.ParseToken(tokenString)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.ParseToken()`: ", zap.Error(err))
			writeUnauthorized(response, "Invalid token!! Please Login Again.")

			return
		}

		ctx := context.WithValue(request.Context(), ClaimsKey, claims)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// ClaimsFromContext extracts the verified claims attached by RequireUser.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)

	return claims, ok
}

func writeUnauthorized(response http.ResponseWriter, message string) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(response).Encode(models.Response{
		Success: false,
		Message: message,
	})
}
