package main

import (
	"context"

	"github.com/spf13/cobra"

	"bpp-notes/internal/client"
)

var rmID string

var rmCmd = &cobra.Command{
	Use:   "rm",
	Short: "Remove existing note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(cmd, func(ctx context.Context, inv *client.Invoker) (int, error) {
			return inv.Remove(ctx, rmID)
		})
	},
}

func init() {
	rmCmd.Flags().StringVarP(&rmID, "id", "i", "", "Id of note to be removed")
	_ = rmCmd.MarkFlagRequired("id")

	rootCmd.AddCommand(rmCmd)
}
