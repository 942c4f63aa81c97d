package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"MusicHub/core/auth"
	"MusicHub/logger"
	"MusicHub/model"
)

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// LoginHandler handles user login requests.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.userRepo.Authenticate(req.Username, req.Password)
	if err != nil {
		logger.Error("login lookup failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		logger.Warn("login rejected", logger.String("username", req.Username))
		respondError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := auth.GenerateToken(user, h.cfg.JWTSecret)
	if err != nil {
		logger.Error("failed to generate token", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("login succeeded", logger.String("username", user.Username))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    user.Public(),
	})
}

// RegisterHandler handles self-service artist registration. New accounts
// always get the artist role; only managers can promote.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	existing, err := h.userRepo.FindByUsername(req.Username)
	if err != nil {
		logger.Error("registration lookup failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "Username already taken")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("failed to hash password", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := &model.User{
		ID:           fmt.Sprintf("%d", time.Now().UnixMilli()),
		Username:     req.Username,
		PasswordHash: hash,
		Role:         model.RoleArtist,
		FullName:     req.FullName,
		Email:        req.Email,
		SocialLinks:  map[string]string{},
		CreatedAt:    time.Now(),
	}

	if err := h.userRepo.Upsert(user); err != nil {
		logger.Error("failed to create account", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	logger.Info("account registered", logger.String("username", user.Username))

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"user":    user.Public(),
	})
}
