package repository

import (
	"fmt"
	"time"

	"MusicHub/core/auth"
	"MusicHub/logger"
	"MusicHub/model"
)

// Seed credentials for a fresh deployment. The passwords match the demo
// dashboard and should be rotated before anything real goes through.
const (
	seedAdminPassword  = "admin"
	seedArtistPassword = "123456"
)

// EnsureSeedUsers creates the demo manager and artist accounts when the
// directory is empty or missing them. Existing accounts are left alone.
func EnsureSeedUsers(users UserRepository) error {
	seeds := []struct {
		user     model.User
		password string
	}{
		{
			user: model.User{
				ID:             "1",
				Username:       ProtectedUsername,
				Role:           model.RoleManager,
				FullName:       "Label manager",
				Email:          "admin@ankun.dev",
				Avatar:         "https://placehold.co/100x100/7c3aed/FFFFFF?text=AD",
				Bio:            "Quản trị viên hệ thống với toàn quyền quản lý.",
				SocialLinks:    map[string]string{},
				ISRCCodePrefix: "DEMO",
			},
			password: seedAdminPassword,
		},
		{
			user: model.User{
				ID:             "2",
				Username:       "artist",
				Role:           model.RoleArtist,
				FullName:       "Demo Artist",
				Email:          "artist@system.local",
				Avatar:         "https://placehold.co/100x100/ec4899/FFFFFF?text=AR",
				Bio:            "Nghệ sĩ demo để test hệ thống.",
				SocialLinks:    map[string]string{},
				ISRCCodePrefix: "DEMO",
			},
			password: seedArtistPassword,
		},
	}

	for _, seed := range seeds {
		existing, err := users.FindByUsername(seed.user.Username)
		if err != nil {
			return fmt.Errorf("failed to check for seed user %q: %w", seed.user.Username, err)
		}
		if existing != nil {
			continue
		}

		hash, err := auth.HashPassword(seed.password)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		u := seed.user
		u.PasswordHash = hash
		u.CreatedAt = time.Now()

		if err := users.Upsert(&u); err != nil {
			return fmt.Errorf("failed to create seed user %q: %w", u.Username, err)
		}
		logger.Info("seed user created", logger.String("username", u.Username))
	}

	return nil
}
