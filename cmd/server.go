package cmd

import (
	"github.com/spf13/cobra"

	"MusicHub/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the MusicHub API server",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
