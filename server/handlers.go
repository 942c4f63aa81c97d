package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"MusicHub/config"
	"MusicHub/core/auth"
	"MusicHub/core/intake"
	"MusicHub/core/notify"
	"MusicHub/logger"
	"MusicHub/model"
	"MusicHub/repository"
)

// APIHandler handles all API requests.
type APIHandler struct {
	userRepo repository.UserRepository
	subRepo  repository.SubmissionRepository
	intake   *intake.Service
	hub      *notify.Hub
	cfg      *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	subRepo repository.SubmissionRepository,
	intakeSvc *intake.Service,
	hub *notify.Hub,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo: userRepo,
		subRepo:  subRepo,
		intake:   intakeSvc,
		hub:      hub,
		cfg:      cfg,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondProblems returns an accumulated validation failure list.
func respondProblems(w http.ResponseWriter, problems []string) {
	respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"success": false,
		"errors":  problems,
	})
}

// AuthMiddleware checks for a valid JWT token and puts the session
// identity into the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := auth.ParseToken(parts[1], h.cfg.JWTSecret)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), "username", claims.Username)
		ctx = context.WithValue(ctx, "role", claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// ManagerOnly rejects requests from accounts without the label-manager
// role. Must be nested inside AuthMiddleware.
func (h *APIHandler) ManagerOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value("role").(model.Role)
		if !ok || role != model.RoleManager {
			respondError(w, http.StatusForbidden, "Label manager role required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// sessionUser loads the account behind the current request.
func (h *APIHandler) sessionUser(r *http.Request) (*model.User, error) {
	username, _ := r.Context().Value("username").(string)
	if username == "" {
		return nil, nil
	}
	return h.userRepo.FindByUsername(username)
}
