package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/rentledger/rentledger-api/internal/authz"
	"github.com/rentledger/rentledger-api/internal/models"
	"github.com/rentledger/rentledger-api/internal/repository"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	userRepo  repository.UserRepository
	jwtSecret string
	logger    zerolog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(userRepo repository.UserRepository, jwtSecret string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "", "invalid request payload")
		return
	}

	user, err := h.userRepo.Authenticate(normalizeEmail(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "authentication_failed", "", models.ErrInvalidCredentials.Error())
			return
		}
		h.logger.Error().Err(err).Msg("login failed")
		writeError(w, http.StatusInternalServerError, codeInternalError, "", "failed to authenticate")
		return
	}

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"tid":  user.TenantID,
		"role": string(user.Role),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to sign token")
		writeError(w, http.StatusInternalServerError, codeInternalError, "", "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": tokenString})
}

// JWTMiddleware authenticates a bearer token and places the caller's
// identity on the request context. A missing or invalid token is
// unauthorized; role checks happen later, in authz.RequireRole.
func (h *AuthHandler) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
			http.Error(w, "Token expired", http.StatusUnauthorized)
			return
		}

		tenantID, ok := claims["tid"].(string)
		if !ok || tenantID == "" {
			http.Error(w, "Missing tenant claim", http.StatusUnauthorized)
			return
		}
		roleClaim, ok := claims["role"].(string)
		if !ok || !models.IsValidRole(models.UserRole(roleClaim)) {
			http.Error(w, "Missing role claim", http.StatusUnauthorized)
			return
		}
		userID, _ := claims["sub"].(string)

		ctx := authz.WithIdentity(r.Context(), tenantID, userID, models.UserRole(roleClaim))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
