package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"MusicHub/config"
	"MusicHub/logger"
	"MusicHub/repository"
	"MusicHub/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo manager and artist accounts in the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger.InitLogger(logger.Config{Level: logger.LogLevel(cfg.LogLevel)})

		st, err := store.FromConfig(cfg)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		if closer, ok := st.(interface{ Close() error }); ok {
			defer closer.Close()
		}

		userRepo := repository.NewStoreUserRepository(st)
		if err := repository.EnsureSeedUsers(userRepo); err != nil {
			return err
		}

		fmt.Println("Seed accounts ready.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
