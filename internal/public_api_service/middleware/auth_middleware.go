package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	AuthenticatedOperatorContextKey = ContextKey("authenticatedOperator")

	tokenIssuer = "dispatch-console"
)

// AuthenticatedOperator holds the claims of a validated operator token.
type AuthenticatedOperator struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}

// OperatorFromContext returns the operator set by AuthMiddleware.
func OperatorFromContext(ctx context.Context) (AuthenticatedOperator, bool) {
	op, ok := ctx.Value(AuthenticatedOperatorContextKey).(AuthenticatedOperator)
	return op, ok
}

// IssueOperatorToken mints an HS256 bearer token for subject.
func IssueOperatorToken(secret, subject, tokenID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("operator JWT secret is empty")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        tokenID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign operator token: %w", err)
	}
	return signed, nil
}

// ParseOperatorToken validates signature, algorithm, issuer and expiry.
func ParseOperatorToken(secret, tokenString string) (AuthenticatedOperator, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return AuthenticatedOperator{}, err
	}
	if !token.Valid {
		return AuthenticatedOperator{}, errors.New("invalid token")
	}

	op := AuthenticatedOperator{Subject: claims.Subject, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		op.ExpiresAt = claims.ExpiresAt.Time
	}
	return op, nil
}

// AuthMiddleware requires a valid operator bearer token. An empty secret disables the check.
func AuthMiddleware(secret string, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(r.Context(), "Authorization header missing", "path", r.URL.Path)
				unauthorized(w, "Authorization header required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.WarnContext(r.Context(), "Invalid Authorization header format")
				unauthorized(w, "Invalid Authorization header format")
				return
			}

			op, err := ParseOperatorToken(secret, strings.TrimSpace(parts[1]))
			if err != nil {
				logger.WarnContext(r.Context(), "Token validation failed", "error", err)
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), AuthenticatedOperatorContextKey, op)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprintf(w, "{%q:%q}\n", "detail", detail)
}
