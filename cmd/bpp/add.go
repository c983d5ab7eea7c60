package main

import (
	"context"

	"github.com/spf13/cobra"

	"bpp-notes/internal/client"
	"bpp-notes/internal/editor"
)

var addParams client.AddParams

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add new note",
	Long: `Add creates a note from --title and --content, or composes it in $EDITOR
with --edit. In the editor the first line is the title and the rest is the content.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []client.Option
		if addParams.Edit {
			opts = append(opts, client.WithComposer(editor.New()))
		}

		return invoke(cmd, func(ctx context.Context, inv *client.Invoker) (int, error) {
			return inv.Add(ctx, addParams)
		}, opts...)
	},
}

func init() {
	addCmd.Flags().StringVarP(&addParams.Title, "title", "t", "", "Note title")
	addCmd.Flags().StringVarP(&addParams.Content, "content", "c", "", "Note content")
	addCmd.Flags().BoolVarP(&addParams.Edit, "edit", "e", false, "Compose the note in $EDITOR")

	addCmd.MarkFlagsMutuallyExclusive("title", "edit")
	addCmd.MarkFlagsMutuallyExclusive("content", "edit")
	addCmd.MarkFlagsOneRequired("title", "content", "edit")

	rootCmd.AddCommand(addCmd)
}
