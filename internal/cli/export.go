package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"cardwrite/internal/publish"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		to          string
		html        bool
		column      int
		frontMatter bool
		overwrite   bool
		watch       bool
		debounce    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the document as Markdown (or a standalone HTML page)",
		Example: `  cardwrite export --to draft.md
  cardwrite export --to chapter-outline.md --column 0
  cardwrite export --to draft.html --html --overwrite
  cardwrite export --to draft.md --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opt := publish.WriteOptions{
				RenderOptions: publish.RenderOptions{Column: column, FrontMatter: frontMatter},
				HTML:          html,
				Overwrite:     overwrite,
			}
			if !watch {
				doc, _, err := loadDoc(cmd, app)
				if err != nil {
					return writeErr(cmd, err)
				}
				res, err := publish.Write(doc, to, opt)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": res})
			}

			_, s, err := loadDoc(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var mu sync.Mutex
			w := publish.NewWatcher(publish.WatcherOpts{
				Store:    s,
				To:       to,
				Options:  opt,
				Debounce: debounce,
				OnExport: func(res publish.WriteResult, err error) {
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), "export:", err)
						return
					}
					if res.Unchanged {
						return
					}
					_ = writeOut(cmd, app, map[string]any{"data": res})
				},
			})
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl+c to stop)\n", s.Dir)
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output file")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().BoolVar(&html, "html", false, "Render a standalone HTML page")
	cmd.Flags().IntVar(&column, "column", publish.WholeTree, "Export one column in display order (default: the whole tree, depth-first)")
	cmd.Flags().BoolVar(&frontMatter, "front-matter", false, "Prepend a YAML header (markdown only)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep exporting whenever the document changes (implies --overwrite)")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period before a watched re-export")
	return cmd
}
