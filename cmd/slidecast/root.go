// Command slidecast is the slideshow video compositor: a serve mode exposing
// the HTTP job API, a synchronous local render mode, and client commands for
// inspecting and cancelling jobs on a running server.
package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "slidecast",
		Short:         "Compose narrated slideshow videos from images, audio, and subtitles",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(&configFlag))
	rootCmd.AddCommand(newRenderCommand(&configFlag))
	rootCmd.AddCommand(newJobsCommand(&configFlag))
	rootCmd.AddCommand(newStatusCommand(&configFlag))
	rootCmd.AddCommand(newCancelCommand(&configFlag))
	rootCmd.AddCommand(newFontsCommand())
	rootCmd.AddCommand(newConfigCommand(&configFlag))

	return rootCmd
}
