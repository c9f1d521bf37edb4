package v1handler

import (
	"context"
	"net/http"
	"strings"

	"reconciler/internal/config"
	"reconciler/pkg/serrors"

	"github.com/golang-jwt/jwt/v5"
)

// SecHandlerOptions configure the bearer-token middleware.
type SecHandlerOptions struct {
	// PublicKey is the PEM-encoded RSA public key used to verify tokens.
	// When empty, authentication is disabled and all requests pass through.
	PublicKey string
}

// NewSecHandlerOptions derives SecHandlerOptions from the application config.
func NewSecHandlerOptions(cfg *config.Config) SecHandlerOptions {
	return SecHandlerOptions{
		PublicKey: cfg.JWT.PublicKey,
	}
}

// SecHandler authenticates requests with RS256 bearer tokens.
type SecHandler struct {
	options SecHandlerOptions
}

// NewSecHandler creates a SecHandler with the given options.
func NewSecHandler(options SecHandlerOptions) *SecHandler {
	return &SecHandler{options: options}
}

type subjectContextKey struct{}

// Subject returns the authenticated token subject stored in ctx, if any.
func Subject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectContextKey{}).(string)

	return subject, ok
}

// Middleware verifies the Authorization header of each request and stores the
// token subject in the request context. Requests with a missing or invalid
// token get a 401.
func (s *SecHandler) Middleware(next http.Handler) http.Handler {
	if s.options.PublicKey == "" {
		return next
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(s.options.PublicKey))
	if err != nil {
		// Fail every request instead of silently running unauthenticated.
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respondError(r.Context(), w, serrors.With(serrors.ErrInternal, "could not parse RSA public key"))
		})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			respondError(ctx, w, serrors.With(serrors.ErrUnauthorized, "missing bearer token"))

			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
		if err != nil {
			respondError(ctx, w, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid bearer token"))

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, subjectContextKey{}, claims.Subject)))
	})
}
