package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2/jwt"
)

type contextKey string

const ClerkIDKey contextKey = "clerkID"
const ClerkEmailKey contextKey = "clerkEmail"

// customClaims carries the fields our Clerk JWT template adds on top of the
// standard session claims.
type customClaims struct {
	Email string `json:"email"`
}

// ClerkAuthMiddleware validates Clerk JWT tokens and extracts user info
func ClerkAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractToken(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authorization required")
			return
		}

		// Verify the token
		claims, err := jwt.Verify(r.Context(), &jwt.VerifyParams{
			Token: token,
			CustomClaimsConstructor: func(_ context.Context) any {
				return &customClaims{}
			},
		})
		if err != nil {
			log.Printf("Token verification failed: %v", err)
			respondWithError(w, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			return
		}

		// Add Clerk user ID and email to context
		ctx := context.WithValue(r.Context(), ClerkIDKey, claims.Subject)
		if custom, ok := claims.Custom.(*customClaims); ok && custom.Email != "" {
			ctx = context.WithValue(ctx, ClerkEmailKey, custom.Email)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the token query parameter because browser WebSocket clients cannot
// set headers.
func extractToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			return "", false
		}
		return token, true
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}

// GetClerkID extracts Clerk user ID from context
func GetClerkID(ctx context.Context) (string, bool) {
	clerkID, ok := ctx.Value(ClerkIDKey).(string)
	return clerkID, ok
}

// GetClerkEmail extracts the authenticated user's email from context
func GetClerkEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(ClerkEmailKey).(string)
	return email, ok
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(fmt.Sprintf(`{"error": "%s"}`, message)))
}
