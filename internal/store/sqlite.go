package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cardwrite/internal/model"

	_ "modernc.org/sqlite"
)

const (
	schemaVersion = 1
	// maxSnapshots bounds the snapshot table; older rows are pruned on append.
	maxSnapshots = 500
)

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite registers itself as "sqlite".
	db, err := sql.Open("sqlite", s.dbPath())
	if err != nil {
		return nil, err
	}
	// WAL keeps the CLI readable while the TUI writes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS blocks (
			id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL,
			rank TEXT NOT NULL,
			category TEXT NOT NULL,
			content TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_parent ON blocks(parent_id, rank);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			taken_at_unixms INTEGER NOT NULL,
			reason TEXT NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_taken ON snapshots(taken_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	_, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO state_meta(k, v) VALUES('version', ?)`, fmt.Sprintf("%d", schemaVersion))
	return err
}

func loadDocument(ctx context.Context, db *sql.DB) (*Document, error) {
	title := ""
	err := db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = 'title'`).Scan(&title)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, parent_id, rank, category, content, updated_at_unixms FROM blocks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []model.Block
	for rows.Next() {
		var (
			b         model.Block
			parent    string
			updatedMs int64
		)
		if err := rows.Scan(&b.ID, &parent, &b.Rank, &b.Category, &b.Content, &updatedMs); err != nil {
			return nil, err
		}
		if parent = strings.TrimSpace(parent); parent != "" {
			b.ParentID = &parent
		}
		b.UpdatedAt = time.UnixMilli(updatedMs).UTC()
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return NewDocument(title, blocks), nil
}

func saveDocument(ctx context.Context, db *sql.DB, doc *Document) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES('title', ?)`, strings.TrimSpace(doc.Title)); err != nil {
		return err
	}
	// Replace-all: documents are small and a save is one transaction.
	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO blocks(id, parent_id, rank, category, content, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, b := range doc.blocks {
		if _, err := stmt.ExecContext(ctx, b.ID, b.Parent(), b.Rank, b.Category, b.Content, b.UpdatedAt.UTC().UnixMilli()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AppendSnapshot stores snap, assigning an id and timestamp when missing, and
// prunes the oldest rows beyond the retention limit.
func (s Store) AppendSnapshot(ctx context.Context, snap model.Snapshot) (model.Snapshot, error) {
	if snap.ID == "" {
		snap.ID = newSnapshotID()
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now().UTC()
	}
	if strings.TrimSpace(snap.Reason) == "" {
		snap.Reason = "autosave"
	}
	raw, err := json.Marshal(snap.Blocks)
	if err != nil {
		return model.Snapshot{}, err
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `INSERT INTO snapshots(id, taken_at_unixms, reason, json) VALUES(?, ?, ?, ?)`,
		snap.ID, snap.TakenAt.UTC().UnixMilli(), snap.Reason, string(raw)); err != nil {
		return model.Snapshot{}, err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM snapshots WHERE id NOT IN (
		SELECT id FROM snapshots ORDER BY taken_at_unixms DESC, rowid DESC LIMIT ?
	)`, maxSnapshots); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// ListSnapshots returns snapshots newest first. limit == 0 means "all".
func (s Store) ListSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT id, taken_at_unixms, reason, json FROM snapshots ORDER BY taken_at_unixms DESC, rowid DESC`
	var rows *sql.Rows
	if limit > 0 {
		rows, err = db.QueryContext(ctx, q+` LIMIT ?`, limit)
	} else {
		rows, err = db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Snapshot{}
	for rows.Next() {
		var (
			snap    model.Snapshot
			takenMs int64
			raw     string
		)
		if err := rows.Scan(&snap.ID, &takenMs, &snap.Reason, &raw); err != nil {
			return nil, err
		}
		snap.TakenAt = time.UnixMilli(takenMs).UTC()
		if err := json.Unmarshal([]byte(raw), &snap.Blocks); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", snap.ID, err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// GetSnapshot returns one snapshot by id.
func (s Store) GetSnapshot(ctx context.Context, id string) (model.Snapshot, error) {
	snaps, err := s.ListSnapshots(ctx, 0)
	if err != nil {
		return model.Snapshot{}, err
	}
	for _, snap := range snaps {
		if snap.ID == id {
			return snap, nil
		}
	}
	return model.Snapshot{}, errNotFound("snapshot", id)
}
