package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active short links, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		links, err := a.service.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list links: %w", err)
		}

		if len(links) == 0 {
			fmt.Println("No active links.")
			return nil
		}

		for _, l := range links {
			fmt.Printf("%-10s  clicks=%-6d  %s\n", l.Code, l.TotalClicks, l.TargetURL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
