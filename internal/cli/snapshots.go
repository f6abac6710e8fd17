package cli

import (
	"time"

	"cardwrite/internal/model"

	"github.com/spf13/cobra"
)

type snapshotView struct {
	ID      string    `json:"id"`
	TakenAt time.Time `json:"takenAt"`
	Reason  string    `json:"reason"`
	Cards   int       `json:"cards"`
}

func snapshotViewOf(s model.Snapshot) snapshotView {
	return snapshotView{ID: s.ID, TakenAt: s.TakenAt, Reason: s.Reason, Cards: len(s.Blocks)}
}

func newSnapshotsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Inspect and restore content snapshots",
	}
	cmd.AddCommand(newSnapshotsListCmd(app))
	cmd.AddCommand(newSnapshotsShowCmd(app))
	cmd.AddCommand(newSnapshotsRestoreCmd(app))
	return cmd
}

func newSnapshotsListCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := loadDoc(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			snaps, err := s.ListSnapshots(commandContext(cmd), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := make([]snapshotView, 0, len(snaps))
			for _, snap := range snaps {
				out = append(out, snapshotViewOf(snap))
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum snapshots (0 = all)")
	return cmd
}

func newSnapshotsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <snapshot-id>",
		Short: "Show a snapshot's captured card text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := loadDoc(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			snap, err := s.GetSnapshot(commandContext(cmd), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"snapshot": snapshotViewOf(snap),
					"blocks":   snap.Blocks,
				},
			})
		},
	}
}

func newSnapshotsRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot-id>",
		Short: "Put a snapshot's text back into the cards that still exist",
		Long:  "Restore snapshots the current text first, so a restore can itself be undone.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, s, err := loadDoc(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := commandContext(cmd)
			snap, err := s.GetSnapshot(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			backup, err := s.AppendSnapshot(ctx, model.Snapshot{Reason: "before restore " + snap.ID, Blocks: doc.Contents()})
			if err != nil {
				return writeErr(cmd, err)
			}
			changed := doc.Restore(snap)
			if err := s.Save(ctx, doc); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"restored": snap.ID,
					"changed":  changed,
					"backup":   backup.ID,
				},
			})
		},
	}
}
