package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"beg-migrate/internal/legacy"
)

// importProjectTypes loads the hand-maintained type remap TSV, records the
// legacy id-to-label table from the Types snapshot, and inserts the new type
// catalog. Its output is the precondition for the projects stage.
func importProjectTypes(ctx context.Context, run *Run) error {
	tsvPath := filepath.Join(run.Cfg.InitialDataDir, "projectTypes.tsv")
	remap, err := legacy.LoadProjectTypeMapping(tsvPath)
	if err != nil {
		// The mapping degrades to unclassified-only; projects still load.
		run.Log.WithError(err).Warn("project type mapping unavailable, all projects will be unclassified")
	}

	legacyIDToLabel := make(map[int64]string)
	for _, rec := range run.Snapshots.Read("Types") {
		if id, ok := rec.Int("IDtype"); ok {
			legacyIDToLabel[id] = rec.TrimStr("Type")
		}
	}

	d := run.Store.Dialect
	now := time.Now().UTC()
	newLabelToID := make(map[string]int64)
	columns := []string{"name", "createdAt", "updatedAt"}

	err = run.Store.WithTx(ctx, func(tx *sql.Tx) error {
		for _, name := range remap.NewTypes() {
			id, err := run.Store.InsertReturningID(ctx, tx, "project_types", columns,
				[]any{name, d.TimeParam(now), d.TimeParam(now)})
			if err != nil {
				return fmt.Errorf("project type %q: %w", name, err)
			}
			newLabelToID[name] = id
		}
		return nil
	})
	if err != nil {
		return err
	}

	run.Types = &TypeMapping{
		Remap:           remap,
		LegacyIDToLabel: legacyIDToLabel,
		NewLabelToID:    newLabelToID,
	}

	run.Log.Infof("imported %d project types (%d legacy labels mapped)", len(newLabelToID), len(remap.LegacyToNew))
	return nil
}
