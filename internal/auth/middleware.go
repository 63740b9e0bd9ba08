package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"samachar/internal/core"
)

// Context key for user
type contextKey string

const userContextKey = contextKey("user")

// Middleware provides authentication middleware
type Middleware struct {
	service *Service
	logger  *core.Logger
}

// NewMiddleware creates new authentication middleware
func NewMiddleware(service *Service, logger *core.Logger) *Middleware {
	return &Middleware{
		service: service,
		logger:  logger,
	}
}

// Authenticate adds the user for the request's Bearer token to the context.
// Requests without an Authorization header proceed as the anonymous user.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authorizationHeader := r.Header.Get("Authorization")

		if authorizationHeader == "" {
			r = contextSetUser(r, AnonymousUser)
			next.ServeHTTP(w, r)
			return
		}

		headerParts := strings.Split(authorizationHeader, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" {
			m.unauthorizedResponse(w, "Access denied. No token provided.")
			return
		}

		user, err := m.service.ValidateToken(headerParts[1])
		if err != nil {
			switch {
			case errors.Is(err, ErrExpiredToken):
				m.unauthorizedResponse(w, "Token has expired. Please login again.")
			case errors.Is(err, ErrInvalidToken):
				m.unauthorizedResponse(w, "Invalid token.")
			default:
				m.logger.Error("Token validation error", "error", err)
				core.HandleError(w, core.NewInternalError("Token verification failed.", err))
			}
			return
		}

		r = contextSetUser(r, user)
		next.ServeHTTP(w, r)
	})
}

// RequireAuthenticatedUser rejects anonymous requests with 401
func (m *Middleware) RequireAuthenticatedUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)

		if user.IsAnonymous() {
			m.unauthorizedResponse(w, "Access denied. No token provided.")
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (m *Middleware) unauthorizedResponse(w http.ResponseWriter, message string) {
	core.WriteErrorResponse(w, http.StatusUnauthorized,
		core.NewUnauthorizedError(message, nil))
}

// Context management
func contextSetUser(r *http.Request, user *User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// GetUserFromContext returns the request's user, or the anonymous user
func GetUserFromContext(r *http.Request) *User {
	user, ok := r.Context().Value(userContextKey).(*User)
	if !ok {
		return AnonymousUser
	}
	return user
}

// ContextWithUser returns a context carrying the given user (used by tests)
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
