package cli

import (
	"fmt"
	"strings"

	"cardwrite/internal/docs"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var (
		raw    bool
		render string
	)

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show the user guide (keys, focus mode, export, config)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"topics": docs.Topics()}})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `cardwrite docs` to list topics)", topic))
			}

			switch {
			case strings.TrimSpace(render) != "":
				out, err := glamour.Render(body, strings.TrimSpace(render))
				if err != nil {
					return writeErr(cmd, err)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			case raw:
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"topic": strings.ToLower(strings.TrimSpace(topic)), "markdown": body}})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no JSON envelope)")
	cmd.Flags().StringVar(&render, "render", "", "Render for the terminal with a glamour style (dark|light|notty)")
	return cmd
}
