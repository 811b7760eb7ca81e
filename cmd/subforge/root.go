package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var serverFlag string

	rootCmd := &cobra.Command{
		Use:           "subforge",
		Short:         "Subforge transcription service CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Daemon base URL (default derived from config)")

	rootCmd.AddCommand(newConfigCommand(&configFlag))
	rootCmd.AddCommand(newTranscribeCommand(&configFlag, &serverFlag))
	rootCmd.AddCommand(newHealthCommand(&configFlag, &serverFlag))

	return rootCmd
}
