package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Soft-delete a short link",
	Long: `Mark a link as deleted. The link stops resolving immediately; its
code stays reserved unless code reuse is enabled in the configuration.

Example:
  linkctl delete --code promo1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("code")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.service.Delete(cmd.Context(), code); err != nil {
			return fmt.Errorf("delete link: %w", err)
		}

		fmt.Printf("Link %q deleted\n", code)
		return nil
	},
}

func init() {
	deleteCmd.Flags().StringP("code", "c", "", "short code to delete")
	deleteCmd.MarkFlagRequired("code")

	rootCmd.AddCommand(deleteCmd)
}
