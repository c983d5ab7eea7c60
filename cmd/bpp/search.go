package main

import (
	"context"

	"github.com/spf13/cobra"

	"bpp-notes/internal/client"
)

var searchAll bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for note",
	Long:  `Search prints notes whose title contains the query, or whose title or content does with --all.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		return invoke(cmd, func(ctx context.Context, inv *client.Invoker) (int, error) {
			return inv.Search(ctx, query, searchAll)
		})
	},
}

func init() {
	searchCmd.Flags().BoolVarP(&searchAll, "all", "a", false, "Search for both title and content")

	rootCmd.AddCommand(searchCmd)
}
