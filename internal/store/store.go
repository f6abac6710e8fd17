package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirName    = ".cardwrite"
	dbFileName = "document.sqlite"
)

// Store is a document directory. All state lives in one sqlite file inside it.
type Store struct {
	Dir string
}

// DiscoverDir walks up from start looking for a .cardwrite directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, dirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir returns the nearest .cardwrite directory, or ./.cardwrite when
// none exists yet.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, dirName), nil
}

// LocalDir returns ./.cardwrite without looking at parent directories.
func LocalDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, dirName), nil
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store: missing dir")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) dbPath() string {
	return filepath.Join(s.Dir, dbFileName)
}

// Path returns the document file. The sqlite journal lives next to it with
// the same name plus a suffix.
func (s Store) Path() string { return s.dbPath() }

// Exists reports whether the document file has been created.
func (s Store) Exists() bool {
	_, err := os.Stat(s.dbPath())
	return err == nil
}

// Load reads the whole document.
func (s Store) Load(ctx context.Context) (*Document, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return loadDocument(ctx, db)
}

// Save replaces the stored document with doc.
func (s Store) Save(ctx context.Context, doc *Document) error {
	if doc == nil {
		return errors.New("store: nil document")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return saveDocument(ctx, db, doc)
}
