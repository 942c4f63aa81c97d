package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"MusicHub/core/auth"
	"MusicHub/logger"
	"MusicHub/model"
	"MusicHub/repository"
)

// GetProfileHandler returns the signed-in account.
func (h *APIHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessionUser(r)
	if err != nil {
		logger.Error("failed to load profile", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    user.Public(),
	})
}

// profileUpdate carries the fields an account owner may change about
// themselves. Username and role are deliberately absent.
type profileUpdate struct {
	FullName    *string            `json:"fullName"`
	Email       *string            `json:"email"`
	Avatar      *string            `json:"avatar"`
	Bio         *string            `json:"bio"`
	SocialLinks *map[string]string `json:"socialLinks"`
	Password    *string            `json:"password"`
}

// UpdateProfileHandler lets the owner edit their profile fields.
func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessionUser(r)
	if err != nil {
		logger.Error("failed to load profile", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	var req profileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.SocialLinks != nil {
		user.SocialLinks = *req.SocialLinks
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			logger.Error("failed to hash password", logger.ErrorField(err))
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		user.PasswordHash = hash
	}

	if err := h.userRepo.Upsert(user); err != nil {
		logger.Error("failed to save profile", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    user.Public(),
	})
}

// ListUsersHandler returns every account, credentials stripped. Manager
// only.
func (h *APIHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.All()
	if err != nil {
		logger.Error("failed to list users", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	public := make([]model.User, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    public,
	})
}

// adminUserRequest is the manager-side create/update body. Any field may
// be set, including the role and the ISRC prefix.
type adminUserRequest struct {
	Username       string            `json:"username"`
	Password       string            `json:"password"`
	Role           model.Role        `json:"role"`
	FullName       string            `json:"fullName"`
	Email          string            `json:"email"`
	Avatar         string            `json:"avatar"`
	Bio            string            `json:"bio"`
	SocialLinks    map[string]string `json:"socialLinks"`
	ISRCCodePrefix string            `json:"isrcCodePrefix"`
}

// CreateUserHandler lets a manager create an account with any role.
func (h *APIHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req adminUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleArtist
	}

	existing, err := h.userRepo.FindByUsername(req.Username)
	if err != nil {
		logger.Error("user lookup failed", logger.ErrorField(err))
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

	links := req.SocialLinks
	if links == nil {
		links = map[string]string{}
	}

	user := &model.User{
		ID:             fmt.Sprintf("%d", time.Now().UnixMilli()),
		Username:       req.Username,
		PasswordHash:   hash,
		Role:           req.Role,
		FullName:       req.FullName,
		Email:          req.Email,
		Avatar:         req.Avatar,
		Bio:            req.Bio,
		SocialLinks:    links,
		ISRCCodePrefix: strings.ToUpper(req.ISRCCodePrefix),
		CreatedAt:      time.Now(),
	}

	if err := h.userRepo.Upsert(user); err != nil {
		logger.Error("failed to create user", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    user.Public(),
	})
}

// UpdateUserHandler lets a manager edit any field of an existing account,
// including the role. The username in the path is authoritative.
func (h *APIHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	user, err := h.userRepo.FindByUsername(username)
	if err != nil {
		logger.Error("user lookup failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	var req adminUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Role != "" {
		user.Role = req.Role
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.SocialLinks != nil {
		user.SocialLinks = req.SocialLinks
	}
	if req.ISRCCodePrefix != "" {
		user.ISRCCodePrefix = strings.ToUpper(req.ISRCCodePrefix)
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			logger.Error("failed to hash password", logger.ErrorField(err))
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		user.PasswordHash = hash
	}

	if err := h.userRepo.Upsert(user); err != nil {
		logger.Error("failed to update user", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    user.Public(),
	})
}

// DeleteUserHandler removes an account; the seed admin is refused.
func (h *APIHandler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if err := h.userRepo.Remove(username); err != nil {
		switch {
		case errors.Is(err, repository.ErrProtectedAccount):
			respondError(w, http.StatusForbidden, "Không thể xóa tài khoản admin")
		case errors.Is(err, repository.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		default:
			logger.Error("failed to delete user", logger.ErrorField(err))
			respondError(w, http.StatusInternalServerError, "Failed to delete user")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
