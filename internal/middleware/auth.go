// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"blogapi/internal/models"
	"blogapi/internal/token"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// ActorKey is the context key for the authenticated user.
	ActorKey contextKey = "actor"

	// ClaimsKey is the context key for the verified token claims.
	ClaimsKey contextKey = "claims"
)

// TokenVerifier checks a raw bearer token.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*token.Claims, error)
}

// UserFinder loads the user a token refers to.
type UserFinder interface {
	FindByID(id uuid.UUID) (*models.User, error)
}

// Authenticate resolves the bearer token on the request into an actor and
// stores it in the request context. Downstream handlers can access it via
// ActorFromCtx(). A missing, invalid, expired, or revoked token leaves the
// request anonymous; enforcement is RequireActor's job.
func Authenticate(tokens TokenVerifier, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Verify(r.Context(), raw)
			if err != nil {
				if !isTokenRejection(err) {
					slog.Error("token verification failed", "error", err, "request_id", chimw.GetReqID(r.Context()))
					writeInternalError(w, r)
					return
				}
				slog.Debug("bearer token rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			userID, _ := claims.UserID()
			user, err := users.FindByID(userID)
			if err != nil {
				slog.Error("load token user failed", "error", err, "request_id", chimw.GetReqID(r.Context()))
				writeInternalError(w, r)
				return
			}
			if user == nil {
				// Account removed after the token was issued.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, user)
			ctx = context.WithValue(ctx, ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor returns 401 when no authenticated actor is present.
// Must be applied after Authenticate in the middleware chain.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorFromCtx(r.Context()) == nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{
				Error:   "Unauthenticated",
				Message: "A valid bearer token is required.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ActorFromCtx extracts the authenticated user from the request context.
// Returns nil if the request is anonymous.
func ActorFromCtx(ctx context.Context) *models.User {
	u, _ := ctx.Value(ActorKey).(*models.User)
	return u
}

// ClaimsFromCtx extracts the verified token claims from the request context.
func ClaimsFromCtx(ctx context.Context) *token.Claims {
	c, _ := ctx.Value(ClaimsKey).(*token.Claims)
	return c
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, raw, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(raw)
}

func isTokenRejection(err error) bool {
	return errors.Is(err, token.ErrExpired) ||
		errors.Is(err, token.ErrMalformed) ||
		errors.Is(err, token.ErrInvalid) ||
		errors.Is(err, token.ErrRevoked)
}
