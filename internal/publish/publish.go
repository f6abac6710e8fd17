package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"cardwrite/internal/store"
)

type WriteOptions struct {
	RenderOptions
	// HTML renders a standalone page instead of markdown.
	HTML      bool
	Overwrite bool
}

type WriteResult struct {
	Written string `json:"written"`
	Format  string `json:"format"`
	Cards   int    `json:"cards"`
	// Unchanged reports that the file already held this export.
	Unchanged bool `json:"unchanged,omitempty"`
}

// Render returns the export body and the number of cards in it.
func Render(doc *store.Document, opt WriteOptions) (string, int, error) {
	cards, err := Cards(doc, opt.Column)
	if err != nil {
		return "", 0, err
	}
	md, err := RenderMarkdown(doc, opt.RenderOptions)
	if err != nil {
		return "", 0, err
	}
	if !opt.HTML {
		return md, len(cards), nil
	}
	// The page carries its own title; front matter would render as text.
	plain := opt.RenderOptions
	plain.FrontMatter = false
	body, err := RenderMarkdown(doc, plain)
	if err != nil {
		return "", 0, err
	}
	page, err := RenderHTML(doc.Title, body)
	return page, len(cards), err
}

// Write exports doc to path.
func Write(doc *store.Document, path string, opt WriteOptions) (WriteResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	path = filepath.Clean(path)

	out, n, err := Render(doc, opt)
	if err != nil {
		return WriteResult{}, err
	}
	res := WriteResult{Written: path, Format: "markdown", Cards: n}
	if opt.HTML {
		res.Format = "html"
	}
	if prev, err := os.ReadFile(path); err == nil && string(prev) == out {
		res.Unchanged = true
		return res, nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return WriteResult{}, err
		}
	}
	if err := writeFile(path, []byte(out), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return res, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
