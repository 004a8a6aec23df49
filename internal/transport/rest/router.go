package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"mbtispy/internal/service"
	"mbtispy/internal/transport/rest/handler"
	"mbtispy/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	GameService *service.GameService
	WSHub       *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(c.GameService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/register", sessionHandler.Register).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/players", sessionHandler.ListPlayers).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/status", sessionHandler.Status).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/confirm", sessionHandler.ConfirmReady).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/role/{playerId}", sessionHandler.Role).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/trait", sessionHandler.HiddenTrait).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/vote/start", sessionHandler.StartVoting).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/vote", sessionHandler.CastVote).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/results", sessionHandler.Results).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/records", sessionHandler.Records).Methods("GET", "OPTIONS")

	// WebSocket session feed
	if c.WSHub != nil {
		wsHandler := ws.NewHandler(c.WSHub)
		v1.HandleFunc("/ws/sessions/{code}", wsHandler.WatchWS).Methods("GET")
	}

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
