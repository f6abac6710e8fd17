package cli

import (
	"errors"
	"io"
	"strings"

	"cardwrite/internal/model"
	"cardwrite/internal/store"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

type cardView struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId,omitempty"`
	Column   int    `json:"column"`
	Index    int    `json:"index"`
	Rank     string `json:"rank"`
	Category string `json:"category,omitempty"`
	Content  string `json:"content"`
}

// cardViews lists the cards of column (or all columns when column < 0) in
// display order.
func cardViews(doc *store.Document, column int) []cardView {
	out := []cardView{}
	for _, col := range doc.ColumnsWithParents() {
		if column >= 0 && col.Index != column {
			continue
		}
		for i, b := range col.Blocks() {
			out = append(out, cardView{
				ID:       b.ID,
				ParentID: b.Parent(),
				Column:   col.Index,
				Index:    i,
				Rank:     b.Rank,
				Category: b.Category,
				Content:  b.Content,
			})
		}
	}
	return out
}

func viewOf(doc *store.Document, id string) (cardView, bool) {
	for _, v := range cardViews(doc, -1) {
		if v.ID == id {
			return v, true
		}
	}
	return cardView{}, false
}

func newCardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cards",
		Aliases: []string{"card"},
		Short:   "List and edit cards",
	}
	cmd.AddCommand(newCardsListCmd(app))
	cmd.AddCommand(newCardsShowCmd(app))
	cmd.AddCommand(newCardsAddCmd(app))
	cmd.AddCommand(newCardsSetCmd(app))
	cmd.AddCommand(newCardsRmCmd(app))
	cmd.AddCommand(newCardsFindCmd(app))
	return cmd
}

func newCardsListCmd(app *App) *cobra.Command {
	var column int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards in column display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := loadDoc(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": cardViews(doc, column),
				"meta": map[string]any{"title": doc.Title, "columns": len(doc.ColumnsWithParents())},
			})
		},
	}
	cmd.Flags().IntVar(&column, "column", -1, "Only list this column (0 = root cards)")
	return cmd
}

func newCardsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <card-id>",
		Short: "Show one card and its children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := loadDoc(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := doc.Resolve(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			v, _ := viewOf(doc, b.ID)
			children := []string{}
			for _, k := range doc.Children(b.ID) {
				children = append(children, k.ID)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"card":      v,
					"children":  children,
					"updatedAt": b.UpdatedAt,
				},
			})
		},
	}
}

// readContent returns the --content value, reading stdin for "-".
func readContent(cmd *cobra.Command, content string) (string, error) {
	if content != "-" {
		return content, nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func newCardsAddCmd(app *App) *cobra.Command {
	var (
		parent  string
		after   string
		content string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a card (last root card, last child of --parent, or below --after)",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, s, err := loadDoc(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if parent != "" && after != "" {
				return writeErr(cmd, errors.New("use either --parent or --after"))
			}
			text, err := readContent(cmd, content)
			if err != nil {
				return writeErr(cmd, err)
			}

			var b model.Block
			switch {
			case after != "":
				ref, err := doc.Resolve(after)
				if err != nil {
					return writeErr(cmd, err)
				}
				if b, err = doc.InsertSibling(ref.ID, false); err != nil {
					return writeErr(cmd, err)
				}
				doc.UpdateContent(b.ID, text)
			case parent != "":
				ref, err := doc.Resolve(parent)
				if err != nil {
					return writeErr(cmd, err)
				}
				if b, err = doc.AddBlock(ref.ID, text); err != nil {
					return writeErr(cmd, err)
				}
			default:
				if b, err = doc.AddBlock("", text); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := s.Save(commandContext(cmd), doc); err != nil {
				return writeErr(cmd, err)
			}
			v, _ := viewOf(doc, b.ID)
			return writeOut(cmd, app, map[string]any{"data": v})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent card id")
	cmd.Flags().StringVar(&after, "after", "", "Insert below this card")
	cmd.Flags().StringVar(&content, "content", "", "Card text (- reads stdin)")
	return cmd
}

func newCardsSetCmd(app *App) *cobra.Command {
	var (
		content  string
		category string
	)
	cmd := &cobra.Command{
		Use:   "set <card-id>",
		Short: "Replace a card's text or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setContent := cmd.Flags().Changed("content")
			setCategory := cmd.Flags().Changed("category")
			if !setContent && !setCategory {
				return writeErr(cmd, errors.New("nothing to set: pass --content and/or --category"))
			}
			doc, s, err := loadDoc(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := doc.Resolve(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if setContent {
				text, err := readContent(cmd, content)
				if err != nil {
					return writeErr(cmd, err)
				}
				doc.UpdateContent(b.ID, text)
			}
			if setCategory {
				if err := doc.SetCategory(b.ID, category); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := s.Save(commandContext(cmd), doc); err != nil {
				return writeErr(cmd, err)
			}
			v, _ := viewOf(doc, b.ID)
			return writeOut(cmd, app, map[string]any{"data": v})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "Card text (- reads stdin)")
	cmd.Flags().StringVar(&category, "category", "", "Card category")
	return cmd
}

func newCardsRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <card-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a card and everything under it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, s, err := loadDoc(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := doc.Resolve(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			before := doc.Len()
			if err := doc.Delete(b.ID); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(commandContext(cmd), doc); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"deleted": b.ID, "cards": before - doc.Len()},
			})
		},
	}
}

// cardSource adapts cards to fuzzy.Source, one line per card.
type cardSource []model.Block

func (c cardSource) String(i int) string { return strings.ReplaceAll(c[i].Content, "\n", " ") }
func (c cardSource) Len() int            { return len(c) }

type findResult struct {
	cardView
	Score   int   `json:"score"`
	Matched []int `json:"matched"`
}

func newCardsFindCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy-search card text, best matches first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := loadDoc(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return writeErr(cmd, errors.New("empty query"))
			}
			src := cardSource(doc.Blocks())
			out := []findResult{}
			for _, m := range fuzzy.FindFrom(query, src) {
				if limit > 0 && len(out) == limit {
					break
				}
				v, _ := viewOf(doc, src[m.Index].ID)
				out = append(out, findResult{cardView: v, Score: m.Score, Matched: m.MatchedIndexes})
			}
			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{"query": query, "searched": src.Len()},
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum results (0 = all)")
	return cmd
}
