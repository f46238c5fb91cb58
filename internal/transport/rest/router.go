package rest

import (
	"net/http"

	"surveyassistant/internal/service"
	"surveyassistant/internal/transport/rest/handler"
	"surveyassistant/internal/transport/rest/middleware"
	"surveyassistant/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	SessionService *service.SessionService
	WSHub          *ws.Hub
	WSHandler      *ws.Handler
	CORSOrigins    []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	resultHandler := handler.NewResultHandler(c.SessionService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/catalog", sessionHandler.Catalog).Methods("GET", "OPTIONS")

	// WebSocket routes (public with token in query param)
	if c.WSHandler != nil {
		v1.HandleFunc("/ws/sessions/{sessionId}", c.WSHandler.RespondentWS).Methods("GET")
		v1.HandleFunc("/ws/sessions/{sessionId}/watch", c.WSHandler.WatchWS).Methods("GET")
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Respondent routes (token scoped to {sessionId})
	respondentRoutes := v1.PathPrefix("/sessions/{sessionId}").Subrouter()
	respondentRoutes.Use(authMW.RequireRespondent)

	respondentRoutes.HandleFunc("", sessionHandler.Get).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("/answers", sessionHandler.Submit).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/document", sessionHandler.Document).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("/fields", sessionHandler.Fields).Methods("GET", "OPTIONS")

	// Host routes (require host auth)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/results", resultHandler.List).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/results/{sessionId}", resultHandler.Get).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/progress/{sessionId}", resultHandler.Progress).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/admin/sessions/{sessionId}", resultHandler.Close).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(origins []string) mux.MiddlewareFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin := r.Header.Get("Origin"); allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
