package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coderedlink/coderedlink/internal/model"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a short link",
	Long: `Create a short link for a target URL, with an optional custom code.

Example:
  linkctl create --url "https://example.com/some/long/path"
  linkctl create --url "https://example.com/sale" --code promo1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetURL, _ := cmd.Flags().GetString("url")
		code, _ := cmd.Flags().GetString("code")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		link, err := a.service.Create(cmd.Context(), model.CreateLinkRequest{
			URL:  targetURL,
			Code: code,
		})
		if err != nil {
			return fmt.Errorf("create link: %w", err)
		}

		fmt.Printf("Code:       %s\n", link.Code)
		fmt.Printf("Target:     %s\n", link.TargetURL)
		fmt.Printf("Short URL:  %s/%s\n", a.cfg.App.BaseURL, link.Code)
		fmt.Printf("Created at: %s\n", link.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("url", "u", "", "target URL to shorten")
	createCmd.Flags().StringP("code", "c", "", "optional custom short code")
	createCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(createCmd)
}
