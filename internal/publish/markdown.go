package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"cardwrite/internal/model"
	"cardwrite/internal/store"

	"gopkg.in/yaml.v3"
)

// WholeTree selects the depth-first reading order of every card.
const WholeTree = -1

type RenderOptions struct {
	// Column exports one column in display order. WholeTree exports every
	// card, each followed by its children.
	Column int
	// FrontMatter prepends a YAML header with the title and export time.
	FrontMatter bool
	Now         time.Time
}

type frontMatter struct {
	Title    string    `yaml:"title,omitempty"`
	Exported time.Time `yaml:"exported"`
	Cards    int       `yaml:"cards"`
	Column   *int      `yaml:"column,omitempty"`
}

// Cards returns the cards an export includes, in reading order. Empty cards
// are skipped.
func Cards(doc *store.Document, column int) ([]model.Block, error) {
	if doc == nil {
		return nil, fmt.Errorf("missing document")
	}
	var all []model.Block
	if column == WholeTree {
		all = treeOrder(doc, "")
	} else {
		cols := doc.ColumnsWithParents()
		if column < 0 || column >= len(cols) {
			return nil, fmt.Errorf("column out of range: %d (document has %d)", column, len(cols))
		}
		all = cols[column].Blocks()
	}
	out := all[:0]
	for _, b := range all {
		if strings.TrimSpace(b.Content) != "" {
			out = append(out, b)
		}
	}
	return out, nil
}

func treeOrder(doc *store.Document, parentID string) []model.Block {
	var out []model.Block
	for _, b := range doc.Children(parentID) {
		out = append(out, b)
		out = append(out, treeOrder(doc, b.ID)...)
	}
	return out
}

// RenderMarkdown joins the exported cards with blank lines.
func RenderMarkdown(doc *store.Document, opt RenderOptions) (string, error) {
	cards, err := Cards(doc, opt.Column)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if opt.FrontMatter {
		fm := frontMatter{
			Title:    strings.TrimSpace(doc.Title),
			Exported: opt.Now.UTC(),
			Cards:    len(cards),
		}
		if fm.Exported.IsZero() {
			fm.Exported = time.Now().UTC()
		}
		if opt.Column != WholeTree {
			c := opt.Column
			fm.Column = &c
		}
		b, err := yaml.Marshal(fm)
		if err != nil {
			return "", err
		}
		buf.WriteString("---\n")
		buf.Write(b)
		buf.WriteString("---\n\n")
	}
	for i, b := range cards {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(strings.TrimRight(b.Content, "\n"))
		buf.WriteString("\n")
	}
	return buf.String(), nil
}
