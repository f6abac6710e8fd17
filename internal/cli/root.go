package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cardwrite/internal/format"
	"cardwrite/internal/store"
	"cardwrite/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "cardwrite",
		Short:        "cardwrite: write a document as a tree of cards",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the writing TUI on the nearest .cardwrite document
  cardwrite

  # Start a document in the current directory
  cardwrite init --title "Novel"

  # Scriptable commands
  cardwrite cards list --column 0
  cardwrite cards find "harbour scene"

  # Export the whole tree and keep it current while you write
  cardwrite export --to draft.md --watch
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("CARDWRITE_DIR", ""), "Path to the document dir (default: nearest .cardwrite)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CARDWRITE_FORMAT", "json"), "Output format (json|edn|yaml)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newCardsCmd(app))
	cmd.AddCommand(newSnapshotsCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	s, err := openStore(app)
	if err != nil {
		return err
	}
	if !s.Exists() {
		return fmt.Errorf("no document in %s; run `cardwrite init` first", s.Dir)
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		// A broken config should not lock the writer out.
		fmt.Fprintln(cmd.ErrOrStderr(), "config:", err)
		cfg = &store.GlobalConfig{}
	}
	return tui.Run(commandContext(cmd), s, cfg)
}

// openStore resolves the document dir: --dir, then the nearest .cardwrite
// above the working directory, then ./.cardwrite.
func openStore(app *App) (store.Store, error) {
	dir := strings.TrimSpace(app.Dir)
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return store.Store{}, err
		}
		dir = d
		app.Dir = dir
	}
	return store.Store{Dir: dir}, nil
}

// loadDoc opens an existing document.
func loadDoc(cmd *cobra.Command, app *App) (*store.Document, store.Store, error) {
	s, err := openStore(app)
	if err != nil {
		return nil, s, err
	}
	if !s.Exists() {
		return nil, s, errors.New("no document in " + s.Dir + "; run `cardwrite init` first")
	}
	doc, err := s.Load(commandContext(cmd))
	if err != nil {
		return nil, s, err
	}
	return doc, s, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
