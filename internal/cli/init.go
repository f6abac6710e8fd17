package cli

import (
	"strings"

	"cardwrite/internal/store"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a document in the current directory (or --dir)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Dir == "" {
				// init never reuses a document found further up the tree.
				d, err := store.LocalDir()
				if err != nil {
					return writeErr(cmd, err)
				}
				app.Dir = d
			}
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := commandContext(cmd)

			created := !s.Exists()
			var doc *store.Document
			if created {
				doc = store.NewDocument(strings.TrimSpace(title), nil)
			} else {
				if doc, err = s.Load(ctx); err != nil {
					return writeErr(cmd, err)
				}
				if cmd.Flags().Changed("title") {
					doc.Title = strings.TrimSpace(title)
				}
			}
			if err := s.Save(ctx, doc); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":        s.Dir,
					"sqlitePath": s.Path(),
					"title":      doc.Title,
					"cards":      doc.Len(),
					"created":    created,
				},
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Document title")
	return cmd
}
