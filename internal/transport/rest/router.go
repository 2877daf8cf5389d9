package rest

import (
	"cardclash/internal/service"
	"cardclash/internal/transport/rest/handler"
	"cardclash/internal/transport/rest/middleware"
	"cardclash/internal/transport/ws"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService        *service.AuthService
	RoomService        *service.RoomService
	QueueService       *service.QueueService
	ConfigService      *service.ConfigService
	LeaderboardService *service.LeaderboardService
	WSHandler          *ws.Handler
	AllowedOrigins     []string
	Logger             *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	roomHandler := handler.NewRoomHandler(c.RoomService, c.QueueService, c.Logger)
	adminHandler := handler.NewAdminHandler(c.ConfigService, c.LeaderboardService, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/admin/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms", roomHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{id}", roomHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/queue", roomHandler.Queue).Methods("GET", "OPTIONS")
	v1.HandleFunc("/leaderboard", adminHandler.Leaderboard).Methods("GET", "OPTIONS")

	if c.WSHandler != nil {
		v1.HandleFunc("/ws", c.WSHandler.ServeWS).Methods("GET")
	}

	// Admin routes
	adminRoutes := v1.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/config", adminHandler.GetConfig).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/config", adminHandler.UpdateConfig).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/matching/start", roomHandler.StartMatching).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/matching/finish", roomHandler.FinishMatching).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/rooms/{id}", roomHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/leaderboard/reset", adminHandler.ResetLeaderboard).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(allowed []string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := allowedOrigin(allowed, r.Header.Get("Origin")); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allowedOrigin(allowed []string, origin string) string {
	for _, o := range allowed {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}
