package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rentledger/rentledger-api/internal/authz"
	"github.com/rentledger/rentledger-api/internal/handlers"
	"github.com/rentledger/rentledger-api/internal/middleware"
	"github.com/rentledger/rentledger-api/internal/models"
)

// NewRouter sets up the API routes
func NewRouter(auth *handlers.AuthHandler, invite *handlers.InviteHandler, register *handlers.RegisterHandler) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	authLimit := middleware.RateLimit(middleware.AuthLimit)

	// Public auth endpoints
	api.Handle("/auth/login", authLimit(http.HandlerFunc(auth.Login))).Methods(http.MethodPost)
	api.Handle("/auth/register", authLimit(http.HandlerFunc(register.Register))).Methods(http.MethodPost)

	// Invitation endpoints, owner role required
	ownerOnly := authz.RequireRole(models.RoleOwner)
	api.Handle("/auth/invite", auth.JWTMiddleware(ownerOnly(http.HandlerFunc(invite.SendInvite)))).Methods(http.MethodPost)
	api.Handle("/auth/invites", auth.JWTMiddleware(ownerOnly(http.HandlerFunc(invite.ListInvites)))).Methods(http.MethodGet)

	return router
}
