package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics for a short link",
	Long: `Show the target URL, click counter, and recent clicks for a code.

Example:
  linkctl stats --code promo1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("code")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		link, err := a.service.Get(cmd.Context(), code)
		if err != nil {
			return fmt.Errorf("fetch stats: %w", err)
		}

		fmt.Printf("Code:         %s\n", link.Code)
		fmt.Printf("Target:       %s\n", link.TargetURL)
		fmt.Printf("Created at:   %s\n", link.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Total clicks: %d\n", link.TotalClicks)
		if link.LastClickedAt != nil {
			fmt.Printf("Last clicked: %s\n", link.LastClickedAt.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Println("Last clicked: never")
		}

		if len(link.Clicks) > 0 {
			fmt.Println("\nClicks (oldest first):")
			for _, c := range link.Clicks {
				fmt.Printf("  %s  ip=%s  agent=%s\n",
					c.CreatedAt.Format("2006-01-02 15:04:05"), c.IPAddress, c.UserAgent)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringP("code", "c", "", "short code to inspect")
	statsCmd.MarkFlagRequired("code")

	rootCmd.AddCommand(statsCmd)
}
