package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

type userIDKey struct{}

// UserIDFrom returns the authenticated user id stored by the auth middleware
func UserIDFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok
}

// contextWithUserID is used by the middleware and by handler tests
func contextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// Authenticator validates HS256 bearer tokens and stores the subject claim
// as the caller's user id. Identity comes from the external auth layer; the
// subject is treated as opaque.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates the auth middleware with the shared signing secret
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Middleware rejects requests without a valid bearer token
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		if !strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			respondUnauthorized(w, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(raw[len("Bearer "):])

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			// HS* only; anything else is a forged or misconfigured token
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %T", token.Method)
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			log.WithError(err).Debug("Rejected invalid bearer token")
			respondUnauthorized(w, "invalid token")
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			respondUnauthorized(w, "token has no subject")
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithUserID(r.Context(), subject)))
	})
}

// RequestLogger logs one line per request with status and latency
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"bytes":     ww.BytesWritten(),
			"duration":  time.Since(start).String(),
			"requestId": middleware.GetReqID(r.Context()),
		}).Info("Request handled")
	})
}
