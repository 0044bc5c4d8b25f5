package main

import (
	"github.com/spf13/cobra"

	"slidecast/internal/fonts"
)

func newFontsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fonts",
		Short: "List the subtitle and title font catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			headers := []string{"Name", "Display", "Installed"}
			catalog := fonts.List()
			rows := make([][]string, 0, len(catalog))
			for _, font := range catalog {
				installed := "no"
				if font.Installed() {
					installed = "yes"
				}
				rows = append(rows, []string{font.Name, font.Display, installed})
			}
			writeRows(cmd.OutOrStdout(), headers, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft})
			return nil
		},
	}
}
