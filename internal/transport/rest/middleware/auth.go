package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"surveyassistant/internal/service"

	"github.com/gorilla/mux"
)

type contextKey string

const (
	HostIDKey    contextKey = "hostId"
	SessionIDKey contextKey = "sessionId"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireHost guards the results and admin routes. Only a bearer
// header is accepted; host tokens never travel in URLs.
func (m *AuthMiddleware) RequireHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			deny(w, http.StatusUnauthorized, "missing host token")
			return
		}

		claims, err := m.authSvc.ValidateHostToken(token)
		if err != nil {
			deny(w, http.StatusUnauthorized, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), HostIDKey, claims.HostID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRespondent validates a respondent JWT, from the bearer header
// or ?token, and checks that it was issued for the {sessionId} in the
// route.
func (m *AuthMiddleware) RequireRespondent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			deny(w, http.StatusUnauthorized, "missing session token")
			return
		}

		claims, err := m.authSvc.ValidateRespondentToken(token)
		if err != nil {
			deny(w, http.StatusUnauthorized, err.Error())
			return
		}
		if id, ok := mux.Vars(r)["sessionId"]; ok && id != claims.SessionID {
			deny(w, http.StatusForbidden, "token not valid for this session")
			return
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, claims.SessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetHostID extracts host ID from context
func GetHostID(ctx context.Context) string {
	if v := ctx.Value(HostIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetSessionID extracts the respondent's session ID from context
func GetSessionID(ctx context.Context) string {
	if v := ctx.Value(SessionIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
